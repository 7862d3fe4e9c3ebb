package export

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/internal/domain"
)

func redBox() domain.Shape {
	s := rect("a", 10, 10, 30, 20)
	s.Fill = "#ff0000"
	s.Stroke = "#ff0000"
	return s
}

func TestRasterizeSVG(t *testing.T) {
	svg, ok := Document([]domain.Shape{redBox()}, nil)
	require.True(t, ok)

	data, err := RasterizeSVG(svg, 1, "#ffffff")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 70, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a}, "padding shows the background")

	r, g, _, _ = img.At(35, 30).RGBA()
	assert.Greater(t, r, uint32(0xc000))
	assert.Less(t, g, uint32(0x4000))
}

func TestRasterizeSVGScale(t *testing.T) {
	svg, _ := Document([]domain.Shape{redBox()}, nil)
	data, err := RasterizeSVG(svg, 2, "")
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 140, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestRasterizeControlCharacterText(t *testing.T) {
	shapes, connectors, err := domain.Deserialize([]byte(`{"shapes":[{"id":"a","type":"rectangle","width":40,"height":20,"text":"tab\u0001x"}]}`))
	require.NoError(t, err)
	svg, ok := Document(shapes, connectors)
	require.True(t, ok)

	data, err := RasterizeSVG(svg, 1, "#ffffff")
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestRasterizeRejectsGarbage(t *testing.T) {
	_, err := RasterizeSVG("<svg", 1, "")
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	svg, _ := Document([]domain.Shape{redBox()}, nil)
	data, err := RasterizeSVG(svg, 2, "#ffffff")
	require.NoError(t, err)

	thumb, err := Thumbnail(data, 70)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.Width)
	assert.Equal(t, 60, cfg.Height)

	same, err := Thumbnail(data, 1000)
	require.NoError(t, err)
	assert.Equal(t, data, same)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{".PNG", FormatPNG, false},
		{" json ", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, []Format{FormatJSON, FormatPNG, FormatSVG}, Formats())
}

func TestExporters(t *testing.T) {
	doc := domain.NewDocument([]domain.Shape{redBox()}, nil)

	for _, f := range Formats() {
		e, err := NewExporter(f, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, f, e.Format())
		assert.Equal(t, "."+string(f), e.Extension())

		data, err := e.Export(doc)
		require.NoError(t, err, f)
		assert.NotEmpty(t, data)

		_, err = e.Export(domain.NewDocument(nil, nil))
		if f == FormatJSON {
			assert.NoError(t, err)
		} else {
			assert.True(t, errors.Is(err, ErrNothingToExport), f)
		}
	}

	_, err := NewExporter("pdf", DefaultOptions())
	assert.Error(t, err)
}
