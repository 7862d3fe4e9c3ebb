package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"whiteboard/internal/domain"
)

func (db *DB) CreateApproval(ctx context.Context, a *domain.Approval) error {
	if a.Status == "" {
		a.Status = domain.ApprovalPending
	}
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	a.CreatedAt = time.Now().UTC()
	_, err := db.conn.ExecContext(ctx,
		db.rebind(`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		a.ID, a.Tool, a.Description, a.Status, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (db *DB) GetApproval(ctx context.Context, id string) (*domain.Approval, error) {
	a := &domain.Approval{}
	err := db.conn.QueryRowContext(ctx,
		db.rebind(`SELECT id, tool, description, status, metadata, created_at FROM mcp_approvals WHERE id = ?`), id,
	).Scan(&a.ID, &a.Tool, &a.Description, &a.Status, &a.Metadata, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get approval %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	return a, nil
}

// ListApprovals returns approvals in creation order. An empty status lists
// all of them.
func (db *DB) ListApprovals(ctx context.Context, status string) ([]domain.Approval, error) {
	query := `SELECT id, tool, description, status, metadata, created_at FROM mcp_approvals`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	rows, err := db.conn.QueryContext(ctx, db.rebind(query+` ORDER BY created_at ASC, id ASC`), args...)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []domain.Approval
	for rows.Next() {
		var a domain.Approval
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Status, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResolveApproval decides a pending approval. Already decided approvals
// are left alone and reported as not found.
func (db *DB) ResolveApproval(ctx context.Context, id string, approved bool) error {
	status := domain.ApprovalRejected
	if approved {
		status = domain.ApprovalApproved
	}
	res, err := db.conn.ExecContext(ctx,
		db.rebind(`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`),
		status, id, domain.ApprovalPending,
	)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	return requireRow(res, "resolve approval", id)
}

func (db *DB) DeleteApproval(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM mcp_approvals WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete approval: %w", err)
	}
	return nil
}
