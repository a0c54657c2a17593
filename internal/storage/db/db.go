package db

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

type Config struct {
	URL string
}

// DB is a *sql.DB that remembers which dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// NewConnection opens and verifies a database connection. postgres:// and
// postgresql:// URLs use lib/pq, anything else is treated as a SQLite path
// or file: URI.
func NewConnection(cfg Config) (*DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	dialect, dsn := ParseURL(cfg.URL)
	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to database")
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "error pinging database")
	}

	if dialect == SQLite {
		// one writer; also keeps the foreign_keys pragma on every statement
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	log.WithField("database", MaskDatabaseURL(cfg.URL)).Info("successfully connected to database")
	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// ParseURL picks the driver for a database URL and returns the DSN to hand it.
// SQLite DSNs always get foreign keys and a busy timeout.
func ParseURL(raw string) (Dialect, string) {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return Postgres, raw
	}

	dsn := raw
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + strings.TrimPrefix(dsn, "sqlite://")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return SQLite, dsn + sep + q.Encode()
}

// MaskDatabaseURL masks credentials in a database URL for logging.
func MaskDatabaseURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[masked]"
	}
	return u.Redacted()
}

// Rebind rewrites ? placeholders into $N for PostgreSQL.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Dialect, query)
}

func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
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

// WithTx runs fn inside a transaction and commits only when fn succeeds.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.WithError(rbErr).Warn("rollback failed")
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}
