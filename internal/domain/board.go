package domain

import (
	"context"
	"time"
)

// Board is a named, persisted canvas.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  Document  `json:"document"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoardStore persists boards. Implementations return an error wrapping
// storage.ErrNotFound when a board does not exist.
type BoardStore interface {
	CreateBoard(ctx context.Context, b *Board) error
	GetBoard(ctx context.Context, id string) (*Board, error)
	ListBoards(ctx context.Context) ([]Board, error)
	UpdateBoard(ctx context.Context, b *Board) error
	DeleteBoard(ctx context.Context, id string) error
}

// ExportRecord remembers an export artifact written for a board.
type ExportRecord struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportLog records export artifacts.
type ExportLog interface {
	RecordExport(ctx context.Context, r *ExportRecord) error
	ListExports(ctx context.Context, boardID string) ([]ExportRecord, error)
}

// Approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Approval is a destructive agent action waiting for a human decision.
type Approval struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Description string    `json:"description"`
	Metadata    string    `json:"metadata"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApprovalStore shares pending approvals between the agent server and the
// process that decides them.
type ApprovalStore interface {
	CreateApproval(ctx context.Context, a *Approval) error
	GetApproval(ctx context.Context, id string) (*Approval, error)
	ListApprovals(ctx context.Context, status string) ([]Approval, error)
	ResolveApproval(ctx context.Context, id string, approved bool) error
	DeleteApproval(ctx context.Context, id string) error
}
