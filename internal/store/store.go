package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned by every single-row lookup that matches nothing.
// Callers treat it as a normal outcome, not a failure.
var ErrNotFound = errors.New("store: not found")

// Store is the shared handle to the persistent database. It is constructed
// once at startup and passed into every component that needs it; nothing in
// this package keeps global state.
type Store struct {
	db *sqlx.DB
}

// Connect opens the pool and verifies the connection.
func Connect(dsn string) (*Store, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an existing pool, mainly for tests.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NewID mints a 24-character hex account id from 12 random bytes.
func NewID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
