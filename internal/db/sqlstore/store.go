package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aklujeats/aklujeats/internal/logger"
	"github.com/aklujeats/aklujeats/internal/models"
)

// Store implements the relational database and order event log on top of
// MySQL, PostgreSQL or SQLite
type Store struct {
	mu     sync.Mutex
	db     *sqlx.DB
	config *models.Config
	now    func() time.Time
}

// New creates a new SQL store. No connection is made until the first
// operation needs one.
func New(config *models.Config) (*Store, error) {
	if _, err := driverName(config.Provider); err != nil {
		return nil, err
	}
	return &Store{
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// NewWithDB wraps an already opened database handle
func NewWithDB(db *sqlx.DB, config *models.Config) *Store {
	return &Store{
		db:     db,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OpenDB opens a pooled handle for the configuration without connecting.
// multiStatements enables multi-statement execution on MySQL, which
// migrations need.
func OpenDB(config *models.Config, multiStatements bool) (*sqlx.DB, error) {
	driver, err := driverName(config.Provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(config.URI) == "" {
		return nil, fmt.Errorf("no connection string configured for the %s database", config.Provider)
	}

	dsn, err := dataSourceName(config, multiStatements)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.Provider, err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
	if config.Provider == "sqlite3" {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

func driverName(provider string) (string, error) {
	switch provider {
	case "mysql", "postgres", "sqlite3":
		return provider, nil
	default:
		return "", fmt.Errorf("unsupported SQL provider: %s", provider)
	}
}

func dataSourceName(config *models.Config, multiStatements bool) (string, error) {
	switch config.Provider {
	case "mysql":
		cfg, err := mysql.ParseDSN(config.URI)
		if err != nil {
			return "", fmt.Errorf("invalid MySQL connection string: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		// report matched rather than changed rows so updates can detect missing records
		cfg.ClientFoundRows = true
		cfg.MultiStatements = multiStatements
		return cfg.FormatDSN(), nil
	case "postgres":
		if strings.HasPrefix(config.URI, "postgres://") || strings.HasPrefix(config.URI, "postgresql://") {
			if _, err := pq.ParseURL(config.URI); err != nil {
				return "", fmt.Errorf("invalid PostgreSQL connection string: %w", err)
			}
		}
		return config.URI, nil
	case "sqlite3":
		return sqlitePath(config.URI)
	default:
		return "", fmt.Errorf("unsupported SQL provider: %s", config.Provider)
	}
}

func sqlitePath(uri string) (string, error) {
	if uri == ":memory:" || strings.HasPrefix(uri, "file:") {
		return uri, nil
	}

	// Expand the URI path (handle ~ and relative paths)
	dbPath := uri
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	return dbPath + "?_foreign_keys=on", nil
}

// conn returns the open handle, opening and verifying it on first use
func (s *Store) conn(ctx context.Context) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := OpenDB(s.config, false)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", s.config.Provider, err)
	}

	s.checkServerVersion(ctx, db)
	s.db = db
	return db, nil
}

// checkServerVersion warns when the server is older than the configured hint
func (s *Store) checkServerVersion(ctx context.Context, db *sqlx.DB) {
	if s.config.Provider != "mysql" || s.config.ServerVersion == "" {
		return
	}

	var version string
	if err := db.GetContext(ctx, &version, "SELECT VERSION()"); err != nil {
		logger.Warning("Could not read MySQL server version: %v", err)
		return
	}

	if CompareVersions(version, s.config.ServerVersion) < 0 {
		logger.Warning("MySQL server version %s is older than the expected %s", version, s.config.ServerVersion)
		return
	}
	logger.Debug("MySQL server version %s (expected %s)", version, s.config.ServerVersion)
}

// CompareVersions compares dotted numeric versions, ignoring any suffix
// such as "-log" or "-0ubuntu". It returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	if i := strings.IndexFunc(v, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		v = v[:i]
	}
	var parts []int
	for _, p := range strings.Split(v, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

// Connect opens the connection eagerly so configuration errors surface now
func (s *Store) Connect(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// Disconnect closes the connection pool
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// DB exposes the underlying handle, opening it if needed
func (s *Store) DB(ctx context.Context) (*sqlx.DB, error) {
	return s.conn(ctx)
}

// isUniqueViolation reports whether err is a duplicate key error on any of
// the supported drivers
func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// where accumulates filter clauses
type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, arg interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, arg)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
