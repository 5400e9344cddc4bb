package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
	"github.com/vyrodovalexey/avgitgw/internal/store/memory"
)

func newIdentityFixture() *memory.Store {
	users := memory.NewStore()
	users.AddUser(&store.User{ID: 42, Username: "alice", Session: "abc123"})
	return users
}

func TestIdentityResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver := NewIdentityResolver(newIdentityFixture(), observability.NopLogger())
	ctx := context.Background()

	tests := []struct {
		name         string
		token        string
		wantUsername string
	}{
		{
			name:         "Matching token",
			token:        "42$abc123",
			wantUsername: "alice",
		},
		{
			name:  "Absent token",
			token: "",
		},
		{
			name:  "Wrong session",
			token: "42$other",
		},
		{
			name:  "Unknown id",
			token: "7$abc123",
		},
		{
			name:  "Non-numeric id degrades to sentinel",
			token: "notanumber",
		},
		{
			name:  "Missing session segment",
			token: "42",
		},
		{
			name:  "Garbage with separator",
			token: "x$y",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user := resolver.Resolve(ctx, tt.token)
			if tt.wantUsername == "" {
				assert.Nil(t, user)
				return
			}
			require.NotNil(t, user)
			assert.Equal(t, tt.wantUsername, user.Username)
		})
	}
}

// A malformed token must degrade to a guaranteed-non-match lookup, never
// accidentally resolve a real row.
func TestIdentityResolver_SentinelsNeverMatch(t *testing.T) {
	t.Parallel()

	users := newIdentityFixture()
	// Even a user that stored the sentinel session string is unreachable
	// through a malformed token because the sentinel id is -1.
	users.AddUser(&store.User{ID: 9, Username: "trap", Session: "unknown"})

	resolver := NewIdentityResolver(users, observability.NopLogger())

	assert.Nil(t, resolver.Resolve(context.Background(), "notanumber"))
}

func TestIdentityResolver_StoreFailure(t *testing.T) {
	t.Parallel()

	resolver := NewIdentityResolver(&failingUserStore{}, nil)

	// Lookup errors degrade to no identity rather than propagating.
	assert.Nil(t, resolver.Resolve(context.Background(), "42$abc123"))
}
