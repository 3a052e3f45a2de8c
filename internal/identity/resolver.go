// Package identity resolves a human-supplied identifier (handle, legacy
// username, email, or internal id) to exactly one account.
package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"coffee-platform/internal/models"
	"coffee-platform/internal/store"
)

// ErrNotFound is the normal miss outcome. Callers must not treat it as
// exceptional: almost every public page load resolves an arbitrary string.
var ErrNotFound = errors.New("identity: account not found")

var (
	hexIDPattern      = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Directory is the subset of the store the resolver needs. UserByUsernamePattern
// receives an already-escaped, anchored, case-insensitive pattern.
type Directory interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByUsernamePattern(ctx context.Context, pattern string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// NormalizeHandle maps arbitrary input to the canonical handle form: trimmed,
// leading "@" run stripped, lowercased, internal whitespace runs collapsed to
// a single hyphen. Signup and profile update use the same normalization so a
// stored handle always round-trips through Resolve.
func NormalizeHandle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "@")
	s = strings.ToLower(s)
	return whitespacePattern.ReplaceAllString(s, "-")
}

// Resolve tries five lookups in a fixed order and returns the first hit.
// The order is load-bearing: it decides which account an ambiguous legacy
// string maps to, so it must not be rearranged.
//
//  1. normalized handle, exact
//  2. raw input verbatim, when it differs from the normalized form
//     (legacy rows that predate normalization)
//  3. case-insensitive anchored match on the raw input, metacharacters
//     escaped so input can't become an operator
//  4. email, when the input contains "@"
//  5. internal id, when the input is 24 hex chars; a miss here is swallowed
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*models.User, error) {
	raw := strings.TrimSpace(identifier)
	if raw == "" {
		return nil, ErrNotFound
	}
	normalized := NormalizeHandle(raw)

	if normalized != "" {
		u, err := r.dir.UserByUsername(ctx, normalized)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	if raw != normalized {
		u, err := r.dir.UserByUsername(ctx, raw)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	pattern := "^" + regexp.QuoteMeta(raw) + "$"
	u, err := r.dir.UserByUsernamePattern(ctx, pattern)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if strings.Contains(raw, "@") {
		u, err := r.dir.UserByEmail(ctx, raw)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	if hexIDPattern.MatchString(raw) {
		u, err := r.dir.UserByID(ctx, raw)
		if err == nil {
			return u, nil
		}
		// An id-shaped string that matches nothing is an ordinary miss.
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	return nil, ErrNotFound
}
