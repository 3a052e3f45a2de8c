package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"coffee-platform/internal/models"
)

const userColumns = `id, username, name, email, password_hash, profile_pic, cover_pic,
	razorpay_key_id, razorpay_key_secret, widget_token, created_at, updated_at`

func (s *Store) getUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByUsername looks up a user by the exact stored username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.getUser(ctx, query, username)
}

// UserByUsernamePattern matches the stored username against an anchored,
// case-insensitive regular expression. The caller is responsible for
// escaping the pattern; raw user input must never reach this method.
func (s *Store) UserByUsernamePattern(ctx context.Context, pattern string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username ~* $1 LIMIT 1`
	return s.getUser(ctx, query, pattern)
}

// UserByEmail looks up a user by exact email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.getUser(ctx, query, email)
}

// UserByID looks up a user by the internal 24-hex id.
func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getUser(ctx, query, id)
}

// UserByEmailUsername matches an exact email together with an anchored,
// case-insensitive username pattern. The password-reset flow uses it so a
// reset can only target the account that owns both identifiers. The caller
// escapes the pattern.
func (s *Store) UserByEmailUsername(ctx context.Context, email, pattern string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND username ~* $2 LIMIT 1`
	return s.getUser(ctx, query, email, pattern)
}

// UpdatePassword replaces the stored hash for one account.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserByWidgetToken authenticates the alert widget.
func (s *Store) UserByWidgetToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE widget_token = $1`
	return s.getUser(ctx, query, token)
}

// CreateUser inserts a new account. The unique constraint on username makes
// duplicate handles fail here rather than racing a prior existence check.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users
		  (id, username, name, email, password_hash, profile_pic, cover_pic,
		   razorpay_key_id, razorpay_key_secret, widget_token)
		VALUES
		  ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	return s.db.QueryRowxContext(ctx, query,
		u.ID, u.Username, u.Name, u.Email, u.PasswordHash, u.ProfilePic,
		u.CoverPic, u.RazorpayKeyID, u.RazorpaySecret, u.WidgetToken,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// ProfileUpdate is the sparse, explicitly-enumerated set of fields a profile
// update may touch. Nil means "leave unchanged". Anything the client sends
// outside these fields is dropped at the JSON boundary.
type ProfileUpdate struct {
	Name           *string
	Email          *string
	Username       *string
	ProfilePic     *string
	CoverPic       *string
	RazorpayKeyID  *string
	RazorpaySecret *string
}

// profileUpdateSets renders the SET clause for a sparse update. Only
// non-nil fields appear; updated_at always does.
func profileUpdateSets(upd ProfileUpdate) (string, []any) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	add := func(column string, v *string) {
		if v != nil {
			args = append(args, *v)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("name", upd.Name)
	add("email", upd.Email)
	add("username", upd.Username)
	add("profile_pic", upd.ProfilePic)
	add("cover_pic", upd.CoverPic)
	add("razorpay_key_id", upd.RazorpayKeyID)
	add("razorpay_key_secret", upd.RazorpaySecret)
	return strings.Join(sets, ", "), args
}

// UpdateProfile applies a sparse update to the account currently named
// oldUsername. When the handle changes, the user's payment rows are
// re-attributed in the same transaction so public history stays correct.
func (s *Store) UpdateProfile(ctx context.Context, oldUsername string, upd ProfileUpdate) (*models.User, error) {
	sets, args := profileUpdateSets(upd)
	args = append(args, oldUsername)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE username = $%d RETURNING `+userColumns,
		sets, len(args),
	)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var u models.User
	if err := tx.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if upd.Username != nil && *upd.Username != oldUsername {
		_, err := tx.ExecContext(ctx,
			`UPDATE payments SET to_user = $1 WHERE to_user = $2`,
			*upd.Username, oldUsername,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &u, nil
}
