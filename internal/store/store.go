// Package store keeps resume skill sets and matched jobs in a SQL database.
// Postgres (through the pgx stdlib driver) and SQLite are supported.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// fixed width so that lexical order equals time order
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ResumeSkillSet struct {
	ResumeID string   `yaml:"resume_id" json:"resume_id"`
	UserID   string   `yaml:"user_id" json:"user_id"`
	Skills   []string `yaml:"skills" json:"skills"`
}

type MatchedJob struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ResumeID    string    `json:"resume_id"`
	JobID       string    `json:"job_id,omitempty"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	JobLink     string    `json:"job_link"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store struct {
	db     *sql.DB
	driver string
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// Open connects to the database and pings it.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))

	var sqlDriver string
	switch driver {
	case DriverPostgres:
		sqlDriver = "pgx"
	case DriverSQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}

	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store dsn is required")
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one connection keeps :memory: databases and writers consistent
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s db: %w", driver, err)
	}

	return New(db, driver, logger)
}

// New wraps an already opened database.
func New(db *sql.DB, driver string, logger *zap.Logger) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		db:     db,
		driver: driver,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind turns ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
