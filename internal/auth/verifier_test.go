package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avgitgw/internal/auth/password"
	"github.com/vyrodovalexey/avgitgw/internal/store"
	"github.com/vyrodovalexey/avgitgw/internal/store/memory"
)

// testHashParams keeps argon2 cheap in tests.
var testHashParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func newTestVerifier(t *testing.T) (*Verifier, *memory.Store) {
	t.Helper()

	hasher := password.NewArgon2Verifier(testHashParams)
	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	users := memory.NewStore()
	users.AddUser(&store.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	})

	return NewVerifier(users, hasher), users
}

func TestVerifier_Verify_Success(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)

	user, err := verifier.Verify(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestVerifier_Verify_Failures(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "Unknown user", username: "bob", password: "secret"},
		{name: "Wrong password", username: "alice", password: "hunter2"},
		{name: "Wrong case username", username: "Alice", password: "secret"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := verifier.Verify(context.Background(), tt.username, tt.password)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, DenyIncorrectCredentials())
		})
	}
}

// Unknown-user and wrong-password denials must be byte-identical.
func TestVerifier_Verify_EnumerationResistance(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)
	ctx := context.Background()

	_, unknownErr := verifier.Verify(ctx, "nosuchuser", "whatever")
	_, wrongPwErr := verifier.Verify(ctx, "alice", "wrong")

	unknown, ok := AsDenial(unknownErr)
	require.True(t, ok)
	wrong, ok := AsDenial(wrongPwErr)
	require.True(t, ok)

	assert.Equal(t, unknown.Status, wrong.Status)
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, IncorrectCredentialsMessage, wrong.Message)
}

func TestVerifier_Verify_MalformedStoredHash(t *testing.T) {
	t.Parallel()

	users := memory.NewStore()
	users.AddUser(&store.User{ID: 2, Username: "carol", PasswordHash: "not-a-phc-string"})

	verifier := NewVerifier(users, password.NewArgon2Verifier(testHashParams))

	user, err := verifier.Verify(context.Background(), "carol", "secret")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, DenyIncorrectCredentials())
}

// failingUserStore reports an infrastructure failure on every lookup.
type failingUserStore struct{}

var errStoreDown = errors.New("connection refused")

func (f *failingUserStore) ByUsername(context.Context, string) (*store.User, error) {
	return nil, errStoreDown
}

func (f *failingUserStore) ByIdentity(context.Context, int64, string) (*store.User, error) {
	return nil, errStoreDown
}

func (f *failingUserStore) ByEmail(context.Context, string) (*store.User, error) {
	return nil, errStoreDown
}

func TestVerifier_Verify_InfrastructureFailure(t *testing.T) {
	t.Parallel()

	verifier := NewVerifier(&failingUserStore{}, password.NewArgon2Verifier(testHashParams))

	user, err := verifier.Verify(context.Background(), "alice", "secret")
	assert.Nil(t, user)
	require.Error(t, err)

	// Infrastructure failures must never be disguised as denials.
	_, isDenial := AsDenial(err)
	assert.False(t, isDenial)
	assert.ErrorIs(t, err, errStoreDown)
}
