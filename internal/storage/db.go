package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"whiteboard/internal/config"
	"whiteboard/internal/domain"
)

// ErrNotFound is wrapped by every lookup of a board that does not exist.
var ErrNotFound = errors.New("not found")

// Store is a board store that also keeps the export log and the agent
// approval queue.
type Store interface {
	domain.BoardStore
	domain.ExportLog
	domain.ApprovalStore
	Close() error
}

// Open connects to the store the configuration names.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return New(config.DriverSQLite, cfg.DSN)
	case config.DriverPostgres:
		return New(config.DriverPostgres, postgresDSN(cfg))
	case config.DriverMySQL:
		return New(config.DriverMySQL, mysqlDSN(cfg))
	case config.DriverMongoDB:
		return NewMongoStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

// DB wraps a SQL connection to sqlite, postgres or mysql.
type DB struct {
	conn    *sql.DB
	driver  string
	dialect dialect
}

type dialect struct {
	id   string
	text string
	time string
}

var dialects = map[string]dialect{
	config.DriverSQLite:   {id: "TEXT", text: "TEXT", time: "DATETIME"},
	config.DriverPostgres: {id: "TEXT", text: "TEXT", time: "TIMESTAMPTZ"},
	config.DriverMySQL:    {id: "VARCHAR(64)", text: "LONGTEXT", time: "DATETIME(6)"},
}

// New opens a SQL board store. For sqlite, dsn is a file path whose
// directory is created if needed.
func New(driver, dsn string) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	if driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == config.DriverSQLite {
		// SQLite only supports one writer
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, driver: driver, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the SQL driver name.
func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) migrate() error {
	d := db.dialect
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id ` + d.id + ` PRIMARY KEY,
			name ` + d.text + ` NOT NULL,
			document ` + d.text + ` NOT NULL,
			created_at ` + d.time + ` NOT NULL,
			updated_at ` + d.time + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS board_exports (
			id ` + d.id + ` PRIMARY KEY,
			board_id ` + d.id + ` NOT NULL,
			format VARCHAR(16) NOT NULL,
			path ` + d.text + ` NOT NULL,
			bytes INTEGER NOT NULL DEFAULT 0,
			created_at ` + d.time + ` NOT NULL
		)`,
		`CREATE INDEX idx_board_exports_board ON board_exports(board_id)`,
		`CREATE TABLE IF NOT EXISTS mcp_approvals (
			id ` + d.id + ` PRIMARY KEY,
			tool VARCHAR(64) NOT NULL,
			description ` + d.text + ` NOT NULL,
			status VARCHAR(16) NOT NULL,
			metadata ` + d.text + ` NOT NULL,
			created_at ` + d.time + ` NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			// MySQL has no CREATE INDEX IF NOT EXISTS
			if strings.HasPrefix(m, "CREATE INDEX") && isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", firstLine(m), err)
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key name")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func postgresDSN(cfg config.StorageConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, sslMode,
	)
}

func mysqlDSN(cfg config.StorageConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.Username, cfg.Password, cfg.Host, port, cfg.Database,
	)
	if cfg.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
