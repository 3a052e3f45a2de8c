package identity

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-platform/internal/models"
	"coffee-platform/internal/store"
)

// fakeDirectory mirrors the store's lookup contract over a slice, including
// the anchored case-insensitive pattern match backing step 3.
type fakeDirectory struct {
	users []*models.User
}

func (d *fakeDirectory) UserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *fakeDirectory) UserByUsernamePattern(_ context.Context, pattern string) (*models.User, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	for _, u := range d.users {
		if re.MatchString(u.Username) {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *fakeDirectory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range d.users {
		if u.Email != "" && u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (d *fakeDirectory) UserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func TestNormalizeHandle(t *testing.T) {
	cases := map[string]string{
		" @Alice ":     "alice",
		"@@Bob Smith":  "bob-smith",
		"ALICE":        "alice",
		"a  b\tc":      "a-b-c",
		"already-fine": "already-fine",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHandle(in), "input %q", in)
	}
}

func TestResolveVariantsOfSameAccount(t *testing.T) {
	alice := &models.User{
		ID:       "507f1f77bcf86cd799439011",
		Username: "alice",
		Email:    "alice@example.com",
	}
	r := NewResolver(&fakeDirectory{users: []*models.User{alice}})

	for _, identifier := range []string{
		" @Alice ",
		"alice",
		"ALICE",
		"alice@example.com",
		"507f1f77bcf86cd799439011",
	} {
		u, err := r.Resolve(context.Background(), identifier)
		require.NoError(t, err, "identifier %q", identifier)
		assert.Equal(t, alice.ID, u.ID, "identifier %q", identifier)
	}
}

func TestResolveMissReturnsNotFound(t *testing.T) {
	r := NewResolver(&fakeDirectory{})

	for _, identifier := range []string{
		"nobody",
		"nobody@example.com",
		"ffffffffffffffffffffffff", // id-shaped but unknown: swallowed, not propagated
		"",
		"   ",
	} {
		_, err := r.Resolve(context.Background(), identifier)
		assert.ErrorIs(t, err, ErrNotFound, "identifier %q", identifier)
	}
}

func TestResolvePrefersNormalizedOverLegacyRaw(t *testing.T) {
	normalized := &models.User{ID: "a1a1a1a1a1a1a1a1a1a1a1a1", Username: "alice"}
	legacyRaw := &models.User{ID: "b2b2b2b2b2b2b2b2b2b2b2b2", Username: "Alice"}
	r := NewResolver(&fakeDirectory{users: []*models.User{legacyRaw, normalized}})

	// "Alice" normalizes to "alice", so step 1 wins before the raw lookup
	// could reach the legacy row.
	u, err := r.Resolve(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, normalized.ID, u.ID)
}

func TestResolveLegacyUnnormalizedHandle(t *testing.T) {
	legacy := &models.User{ID: "c3c3c3c3c3c3c3c3c3c3c3c3", Username: "Bob Smith"}
	r := NewResolver(&fakeDirectory{users: []*models.User{legacy}})

	// Normalized "bob-smith" misses, the raw verbatim lookup hits.
	u, err := r.Resolve(context.Background(), "Bob Smith")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, u.ID)

	// Mixed-case variant of the legacy row lands on the anchored
	// case-insensitive step.
	u, err = r.Resolve(context.Background(), "bob smith")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, u.ID)
}

func TestResolveEscapesPatternInput(t *testing.T) {
	u := &models.User{ID: "d4d4d4d4d4d4d4d4d4d4d4d4", Username: "dotty"}
	r := NewResolver(&fakeDirectory{users: []*models.User{u}})

	// Without escaping, "d.tty" would match "dotty" through the regex step.
	_, err := r.Resolve(context.Background(), "d.tty")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveEmailOnlyTriedWithAtSign(t *testing.T) {
	u := &models.User{ID: "e5e5e5e5e5e5e5e5e5e5e5e5", Username: "carol", Email: "carol@example.com"}
	r := NewResolver(&fakeDirectory{users: []*models.User{u}})

	got, err := r.Resolve(context.Background(), "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// The local part alone is not an email lookup and matches nothing.
	_, err = r.Resolve(context.Background(), "carol.example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
