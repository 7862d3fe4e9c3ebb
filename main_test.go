package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
  "shapes": [
    {"id": "a", "type": "rectangle", "x": 0, "y": 0, "width": 100, "height": 50},
    {"id": "b", "type": "rectangle", "x": 40, "y": 200, "width": 100, "height": 50}
  ],
  "connectors": []
}`

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b "))
	assert.Nil(t, splitIDs(""))
}

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0644))

	doc, err := readDocument(path)
	require.NoError(t, err)
	assert.Len(t, doc.Shapes, 2)

	_, err = readDocument(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestApplyToDocumentAlignsLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0644))

	rootCmd.SetArgs([]string{"align", path, "--mode", "left", "--config", filepath.Join(dir, "none.yaml")})
	require.NoError(t, rootCmd.Execute())

	doc, err := readDocument(path)
	require.NoError(t, err)
	for _, s := range doc.Shapes {
		assert.Equal(t, 0.0, s.X, s.ID)
	}
}
