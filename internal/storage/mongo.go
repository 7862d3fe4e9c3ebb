package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"whiteboard/internal/config"
	"whiteboard/internal/domain"
)

// MongoStore keeps boards and export records in MongoDB. Documents are
// stored as their serialized JSON so the wire format matches the SQL
// stores.
type MongoStore struct {
	client    *mongo.Client
	boards    *mongo.Collection
	exports   *mongo.Collection
	approvals *mongo.Collection
}

type boardDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Document  string    `bson:"document"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type approvalDoc struct {
	ID          string    `bson:"_id"`
	Tool        string    `bson:"tool"`
	Description string    `bson:"description"`
	Metadata    string    `bson:"metadata"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
}

type exportDoc struct {
	ID        string    `bson:"_id"`
	BoardID   string    `bson:"board_id"`
	Format    string    `bson:"format"`
	Path      string    `bson:"path"`
	Bytes     int       `bson:"bytes"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg config.StorageConfig) (*MongoStore, error) {
	uri := mongoURI(cfg)
	dbName := cfg.Database
	if dbName == "" {
		dbName = "whiteboard"
	}

	logURI := uri
	if cfg.Password != "" {
		logURI = strings.ReplaceAll(logURI, cfg.Password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s", logURI)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:    client,
		boards:    db.Collection("boards"),
		exports:   db.Collection("board_exports"),
		approvals: db.Collection("mcp_approvals"),
	}
	if _, err := s.exports.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "board_id", Value: 1}}}); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create export index: %w", err)
	}
	return s, nil
}

// mongoURI accepts a full connection string in DSN or Host, otherwise
// builds one from host and port.
func mongoURI(cfg config.StorageConfig) string {
	for _, candidate := range []string{cfg.DSN, cfg.Host} {
		if strings.HasPrefix(candidate, "mongodb+srv://") || strings.HasPrefix(candidate, "mongodb://") {
			if cfg.Password != "" {
				candidate = strings.ReplaceAll(candidate, "<password>", cfg.Password)
				candidate = strings.ReplaceAll(candidate, "<db_password>", cfg.Password)
			}
			return candidate
		}
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 27017
	}
	if cfg.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Username, cfg.Password, host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", host, port)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateBoard(ctx context.Context, b *domain.Board) error {
	doc, err := encodeDocument(b.Document)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err = s.boards.InsertOne(ctx, boardDoc{ID: b.ID, Name: b.Name, Document: doc, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	return nil
}

func (s *MongoStore) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	var d boardDoc
	err := s.boards.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get board %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return d.board()
}

func (s *MongoStore) ListBoards(ctx context.Context) ([]domain.Board, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.boards.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer cur.Close(ctx)

	var boards []domain.Board
	for cur.Next(ctx) {
		var d boardDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("list boards: %w", err)
		}
		b, err := d.board()
		if err != nil {
			return nil, err
		}
		boards = append(boards, *b)
	}
	return boards, cur.Err()
}

func (s *MongoStore) UpdateBoard(ctx context.Context, b *domain.Board) error {
	doc, err := encodeDocument(b.Document)
	if err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC()
	res, err := s.boards.UpdateByID(ctx, b.ID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: b.Name},
		{Key: "document", Value: doc},
		{Key: "updated_at", Value: b.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update board %s: %w", b.ID, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.boards.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete board %s: %w", id, ErrNotFound)
	}
	if _, err := s.exports.DeleteMany(ctx, bson.D{{Key: "board_id", Value: id}}); err != nil {
		return fmt.Errorf("delete board exports: %w", err)
	}
	return nil
}

func (s *MongoStore) RecordExport(ctx context.Context, r *domain.ExportRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.exports.InsertOne(ctx, exportDoc{
		ID: r.ID, BoardID: r.BoardID, Format: r.Format, Path: r.Path, Bytes: r.Bytes, CreatedAt: r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

func (s *MongoStore) ListExports(ctx context.Context, boardID string) ([]domain.ExportRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.exports.Find(ctx, bson.D{{Key: "board_id", Value: boardID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer cur.Close(ctx)

	var records []domain.ExportRecord
	for cur.Next(ctx) {
		var d exportDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("list exports: %w", err)
		}
		records = append(records, domain.ExportRecord{
			ID: d.ID, BoardID: d.BoardID, Format: d.Format, Path: d.Path, Bytes: d.Bytes, CreatedAt: d.CreatedAt,
		})
	}
	return records, cur.Err()
}

func (d boardDoc) board() (*domain.Board, error) {
	doc, err := decodeDocument(d.Document)
	if err != nil {
		return nil, fmt.Errorf("decode board %s: %w", d.ID, err)
	}
	return &domain.Board{ID: d.ID, Name: d.Name, Document: doc, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

// ─────────────────────────────────────────────────────────────
// Approvals
// ─────────────────────────────────────────────────────────────

func (s *MongoStore) CreateApproval(ctx context.Context, a *domain.Approval) error {
	if a.Status == "" {
		a.Status = domain.ApprovalPending
	}
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	a.CreatedAt = time.Now().UTC()
	_, err := s.approvals.InsertOne(ctx, approvalDoc(*a))
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *MongoStore) GetApproval(ctx context.Context, id string) (*domain.Approval, error) {
	var d approvalDoc
	err := s.approvals.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get approval %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	a := domain.Approval(d)
	return &a, nil
}

func (s *MongoStore) ListApprovals(ctx context.Context, status string) ([]domain.Approval, error) {
	filter := bson.D{}
	if status != "" {
		filter = bson.D{{Key: "status", Value: status}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.approvals.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Approval
	for cur.Next(ctx) {
		var d approvalDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("list approvals: %w", err)
		}
		out = append(out, domain.Approval(d))
	}
	return out, cur.Err()
}

func (s *MongoStore) ResolveApproval(ctx context.Context, id string, approved bool) error {
	status := domain.ApprovalRejected
	if approved {
		status = domain.ApprovalApproved
	}
	res, err := s.approvals.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: domain.ApprovalPending}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
	)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("resolve approval %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteApproval(ctx context.Context, id string) error {
	if _, err := s.approvals.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("delete approval: %w", err)
	}
	return nil
}
