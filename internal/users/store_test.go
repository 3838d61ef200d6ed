package users

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermaster/identity/internal/common"
	"github.com/ordermaster/identity/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewStore(path, logging.NewDiscard())
	s.Clear()
	return s
}

func register(t *testing.T, s *Store, username, email, password string) int {
	t.Helper()
	id, err := s.Register(&User{
		Username: username,
		Email:    email,
		FullName: "Test " + username,
		Role:     RoleCustomer,
	}, password)
	require.NoError(t, err)
	return id
}

func TestNewStore_SeedsDefaultsWhenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewStore(path, logging.NewDiscard())

	active := s.ListActive()
	require.Len(t, active, 3)
	assert.NotNil(t, s.FindByUsername("admin"))
	assert.NotNil(t, s.FindByUsername("manager"))
	assert.NotNil(t, s.FindByUsername("customer"))

	// seed passwords are hashed, not stored in clear
	admin := s.FindByUsername("admin")
	assert.NotEqual(t, "admin123", admin.PasswordHash)

	// reopening the same file must not seed again
	s2 := NewStore(path, logging.NewDiscard())
	assert.Len(t, s2.ListActive(), 3)
}

func TestRegister_AssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)

	id1 := register(t, s, "alice", "a@x.com", "secret1")
	id2 := register(t, s, "bob", "b@y.com", "secret2")

	assert.Equal(t, id1+1, id2)

	alice := s.FindByID(id1)
	require.NotNil(t, alice)
	assert.True(t, alice.IsActive)
	assert.False(t, alice.CreatedAt.IsZero())
	assert.NotEqual(t, "secret1", alice.PasswordHash)
}

func TestRegister_DuplicateChecksAreCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	register(t, s, "alice", "a@x.com", "secret1")

	_, err := s.Register(&User{Username: "bob", Email: "A@X.COM", Role: RoleCustomer}, "secret2")
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	_, err = s.Register(&User{Username: "ALICE", Email: "other@x.com", Role: RoleCustomer}, "secret2")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestRegister_DeactivatedAccountFreesIdentifiers(t *testing.T) {
	s := newTestStore(t)
	id := register(t, s, "alice", "a@x.com", "secret1")
	require.True(t, s.Deactivate(id))

	// uniqueness holds only among active records
	_, err := s.Register(&User{Username: "alice", Email: "a@x.com", Role: RoleCustomer}, "secret2")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	register(t, s, "alice", "a@x.com", "secret1")

	t.Run("by username", func(t *testing.T) {
		u, err := s.Authenticate("ALICE", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("by email", func(t *testing.T) {
		u, err := s.Authenticate("A@X.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("updates last login", func(t *testing.T) {
		before := time.Now()
		u, err := s.Authenticate("alice", "secret1")
		require.NoError(t, err)
		require.NotNil(t, u.LastLoginAt)
		assert.False(t, u.LastLoginAt.Before(before))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Authenticate("alice", "wrong")
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := s.Authenticate("nobody", "secret1")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestAuthenticate_DeactivatedAccount(t *testing.T) {
	s := newTestStore(t)
	id := register(t, s, "alice", "a@x.com", "secret1")
	require.True(t, s.Deactivate(id))

	_, err := s.Authenticate("alice", "secret1")
	assert.True(t, errors.Is(err, common.ErrInactive))
}

func TestUpdate_MergesFields(t *testing.T) {
	s := newTestStore(t)
	id := register(t, s, "alice", "a@x.com", "secret1")

	u := s.FindByID(id)
	u.FullName = "Alice Smith"
	u.Email = "alice@corp.com"
	require.True(t, s.Update(u))

	got := s.FindByID(id)
	assert.Equal(t, "Alice Smith", got.FullName)
	assert.Equal(t, "alice@corp.com", got.Email)

	// password survives an update that carries no hash
	u.PasswordHash = ""
	require.True(t, s.Update(u))
	_, err := s.Authenticate("alice", "secret1")
	assert.NoError(t, err)
}

func TestUpdate_UnknownIDIsNoop(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Update(&User{ID: 42, Username: "ghost"}))
}

func TestChangePassword(t *testing.T) {
	s := newTestStore(t)
	id := register(t, s, "alice", "a@x.com", "secret1")

	require.True(t, s.ChangePassword(id, "newsecret"))

	_, err := s.Authenticate("alice", "secret1")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = s.Authenticate("alice", "newsecret")
	assert.NoError(t, err)

	assert.False(t, s.ChangePassword(999, "whatever"))
}

func TestSearchAndListByRole(t *testing.T) {
	s := newTestStore(t)
	register(t, s, "alice", "alice@x.com", "secret1")
	register(t, s, "bob", "bob@y.com", "secret2")

	found := s.Search("ALI")
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].Username)

	assert.Len(t, s.Search(""), 2)
	assert.Len(t, s.Search("zzz"), 0)

	customers := s.ListByRole(RoleCustomer)
	assert.Len(t, customers, 2)
	assert.Empty(t, s.ListByRole(RoleAdmin))
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s := NewStore(path, logging.NewDiscard())
	s.Clear()
	id, err := s.Register(&User{Username: "alice", Email: "a@x.com", Role: RoleManager}, "secret1")
	require.NoError(t, err)

	s2 := NewStore(path, logging.NewDiscard())
	got := s2.FindByID(id)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, RoleManager, got.Role)
}

func TestLoad_CorruptFileStartsEmptyAndSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewStore(path, logging.NewDiscard())
	// corrupt table is treated as empty, so the bootstrap seeds run
	assert.Len(t, s.ListActive(), 3)
}

func TestGenerateUsername(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, "janenovak", s.GenerateUsername("Jane Novak", "jane@x.com"))
	assert.Equal(t, "jane", s.GenerateUsername("", "jane@x.com"))

	register(t, s, "janenovak", "jn@x.com", "secret1")
	assert.Equal(t, "janenovak1", s.GenerateUsername("Jane Novak", "jane@x.com"))
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)
	register(t, s, "alice", "a@x.com", "secret1")
	_, err := s.Authenticate("alice", "secret1")
	require.NoError(t, err)

	stats := s.Statistics()
	assert.Equal(t, 1, stats["TotalUsers"])
	assert.Equal(t, 1, stats["Customers"])
	assert.Equal(t, 1, stats["NewUsersThisMonth"])
	assert.Equal(t, 1, stats["ActiveToday"])
	assert.Equal(t, 0, stats["Admins"])
}

func TestInitials(t *testing.T) {
	tests := []struct {
		fullName string
		want     string
	}{
		{"Alice Smith", "AS"},
		{"Plato", "PL"},
		{"", "UN"},
		{"X", "X"},
	}
	for _, tt := range tests {
		u := &User{FullName: tt.fullName}
		assert.Equal(t, tt.want, u.Initials(), "full name %q", tt.fullName)
	}
}
