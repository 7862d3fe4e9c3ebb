package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"whiteboard/internal/domain"
)

func encodeDocument(d domain.Document) (string, error) {
	data, err := domain.Serialize(d.Shapes, d.Connectors)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeDocument(s string) (domain.Document, error) {
	shapes, connectors, err := domain.Deserialize([]byte(s))
	if err != nil {
		return domain.Document{}, err
	}
	return domain.NewDocument(shapes, connectors), nil
}

// CreateBoard inserts b, stamping its timestamps.
func (db *DB) CreateBoard(ctx context.Context, b *domain.Board) error {
	doc, err := encodeDocument(b.Document)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err = db.conn.ExecContext(ctx,
		db.rebind(`INSERT INTO boards (id, name, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		b.ID, b.Name, doc, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	return nil
}

func (db *DB) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	b := &domain.Board{}
	var doc string
	err := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT id, name, document, created_at, updated_at FROM boards WHERE id = ?`), id,
	).Scan(&b.ID, &b.Name, &doc, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get board %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if b.Document, err = decodeDocument(doc); err != nil {
		return nil, fmt.Errorf("get board %s: %w", id, err)
	}
	return b, nil
}

// ListBoards returns every board, most recently updated first.
func (db *DB) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, document, created_at, updated_at FROM boards ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		var b domain.Board
		var doc string
		if err := rows.Scan(&b.ID, &b.Name, &doc, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if b.Document, err = decodeDocument(doc); err != nil {
			return nil, fmt.Errorf("list boards: %s: %w", b.ID, err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (db *DB) UpdateBoard(ctx context.Context, b *domain.Board) error {
	doc, err := encodeDocument(b.Document)
	if err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		db.rebind(`UPDATE boards SET name = ?, document = ?, updated_at = ? WHERE id = ?`),
		b.Name, doc, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	return requireRow(res, "update board", b.ID)
}

// DeleteBoard removes the board and its export records.
func (db *DB) DeleteBoard(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM board_exports WHERE board_id = ?`), id); err != nil {
		return fmt.Errorf("delete board exports: %w", err)
	}
	res, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM boards WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if err := requireRow(res, "delete board", id); err != nil {
		return err
	}
	return tx.Commit()
}

func requireRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// Export log
// ─────────────────────────────────────────────────────────────

func (db *DB) RecordExport(ctx context.Context, r *domain.ExportRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		db.rebind(`INSERT INTO board_exports (id, board_id, format, path, bytes, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		r.ID, r.BoardID, r.Format, r.Path, r.Bytes, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// ListExports returns a board's export records, newest first.
func (db *DB) ListExports(ctx context.Context, boardID string) ([]domain.ExportRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		db.rebind(`SELECT id, board_id, format, path, bytes, created_at FROM board_exports WHERE board_id = ? ORDER BY created_at DESC, id ASC`),
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var records []domain.ExportRecord
	for rows.Next() {
		var r domain.ExportRecord
		if err := rows.Scan(&r.ID, &r.BoardID, &r.Format, &r.Path, &r.Bytes, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
