// Package sqlstore implements storage.Store on top of database/sql.
//
// The same queries serve SQLite and PostgreSQL. They are written with "?"
// placeholders and rebound to "$n" for dialects that need numbered
// parameters. Opening connections and applying migrations is left to the
// dialect packages (storage/sqlite, storage/postgres).
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/hisab/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect describes the differences between SQL backends.
type Dialect struct {
	// Name identifies the backend in logs ("sqlite", "postgres").
	Name string

	// NumberedParams rewrites "?" placeholders to "$1", "$2", ...
	NumberedParams bool

	// RowOrder is a column that increases with every insert ("rowid" in
	// SQLite, a serial column in PostgreSQL). It breaks ties in listings.
	RowOrder string

	// IsUniqueViolation reports whether err was caused by a unique or
	// primary key constraint.
	IsUniqueViolation func(err error) bool
}

// Store implements storage.Store for any database/sql driver.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open, migrated database.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle, e.g. for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// q adapts a query to the dialect's placeholder style.
func (s *Store) q(query string) string {
	if !s.dialect.NumberedParams {
		return query
	}
	return rebind(query)
}

func rebind(query string) string {
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

// wrapWrite maps constraint violations to storage.ErrAlreadyExists.
func (s *Store) wrapWrite(op string, err error) error {
	if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("failed to %s: %w", op, storage.ErrAlreadyExists)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// notFound maps sql.ErrNoRows to storage.ErrNotFound.
func notFound(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// expectOne returns storage.ErrNotFound when an UPDATE or DELETE matched nothing.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
