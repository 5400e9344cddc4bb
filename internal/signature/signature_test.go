package signature

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avgitgw/internal/cache"
	"github.com/vyrodovalexey/avgitgw/internal/config"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
	"github.com/vyrodovalexey/avgitgw/internal/store/memory"
)

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()

	s := memory.NewStore()
	s.AddUser(&store.User{
		ID:       7,
		Username: "mellowagain",
		Email:    "mellowagain@example.com",
	})
	return s
}

func TestDisassemble_MatchedEmail(t *testing.T) {
	t.Parallel()

	d := NewDisambiguator(newTestStore(t))

	attr, err := d.Disassemble(context.Background(),
		NewSignature("Some Alias", "mellowagain@example.com"))
	require.NoError(t, err)

	assert.Equal(t, "mellowagain", attr.DisplayName)
	require.True(t, attr.Linked())
	assert.Equal(t, int64(7), *attr.UserID)
}

func TestDisassemble_EmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	d := NewDisambiguator(newTestStore(t))

	attr, err := d.Disassemble(context.Background(),
		NewSignature("Some Alias", "MellowAgain@Example.COM"))
	require.NoError(t, err)

	assert.Equal(t, "mellowagain", attr.DisplayName)
	assert.True(t, attr.Linked())
}

func TestDisassemble_UnmatchedEmail(t *testing.T) {
	t.Parallel()

	d := NewDisambiguator(newTestStore(t))

	attr, err := d.Disassemble(context.Background(),
		NewSignature("Drifter", "drifter@example.com"))
	require.NoError(t, err)

	assert.Equal(t, "Drifter", attr.DisplayName)
	assert.False(t, attr.Linked())
	assert.Nil(t, attr.UserID)
}

func TestDisassemble_NoEmail(t *testing.T) {
	t.Parallel()

	d := NewDisambiguator(newTestStore(t))

	attr, err := d.Disassemble(context.Background(), NewSignature("Drifter", ""))
	require.NoError(t, err)

	assert.Equal(t, "Drifter", attr.DisplayName)
	assert.False(t, attr.Linked())
}

func TestDisassemble_GhostFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sig  Signature
	}{
		{name: "no name", sig: Signature{}},
		{
			name: "undecodable name",
			sig:  Signature{Name: []byte{0xff, 0xfe, 0xfd}},
		},
		{
			name: "undecodable name and email",
			sig: Signature{
				Name:  []byte{0xff, 0xfe},
				Email: []byte{0x80, 0x81},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewDisambiguator(newTestStore(t))

			attr, err := d.Disassemble(context.Background(), tt.sig)
			require.NoError(t, err)

			assert.Equal(t, GhostName, attr.DisplayName)
			assert.False(t, attr.Linked())
		})
	}
}

func TestDisassemble_UndecodableEmailKeepsName(t *testing.T) {
	t.Parallel()

	d := NewDisambiguator(newTestStore(t))

	attr, err := d.Disassemble(context.Background(), Signature{
		Name:  []byte("Drifter"),
		Email: []byte{0xff, 0x40, 0xfe},
	})
	require.NoError(t, err)

	assert.Equal(t, "Drifter", attr.DisplayName)
	assert.False(t, attr.Linked())
}

type failingUserStore struct {
	err error
}

func (f *failingUserStore) ByUsername(context.Context, string) (*store.User, error) {
	return nil, f.err
}

func (f *failingUserStore) ByIdentity(context.Context, int64, string) (*store.User, error) {
	return nil, f.err
}

func (f *failingUserStore) ByEmail(context.Context, string) (*store.User, error) {
	return nil, f.err
}

func TestDisassemble_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	d := NewDisambiguator(&failingUserStore{err: assert.AnError})

	_, err := d.Disassemble(context.Background(),
		NewSignature("Drifter", "drifter@example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()

	c, err := cache.New(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeMemory,
	}, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestDisassemble_CachedAttribution(t *testing.T) {
	t.Parallel()

	users := newTestStore(t)
	c := newTestCache(t)

	d := NewDisambiguator(users,
		WithAttributionCache(c),
		WithAttributionCacheTTL(time.Minute))

	ctx := context.Background()
	sig := NewSignature("Some Alias", "mellowagain@example.com")

	attr, err := d.Disassemble(ctx, sig)
	require.NoError(t, err)
	require.True(t, attr.Linked())

	// The second resolution is served from the cache even after the
	// account disappears from the store.
	users.RemoveUser(7)

	attr, err = d.Disassemble(ctx, sig)
	require.NoError(t, err)
	assert.Equal(t, "mellowagain", attr.DisplayName)
	require.True(t, attr.Linked())
	assert.Equal(t, int64(7), *attr.UserID)
}

func TestDisassemble_CacheKeyIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	users := newTestStore(t)
	c := newTestCache(t)

	d := NewDisambiguator(users, WithAttributionCache(c))

	ctx := context.Background()

	_, err := d.Disassemble(ctx, NewSignature("", "mellowagain@example.com"))
	require.NoError(t, err)

	users.RemoveUser(7)

	attr, err := d.Disassemble(ctx, NewSignature("", "MELLOWAGAIN@EXAMPLE.COM"))
	require.NoError(t, err)
	assert.True(t, attr.Linked())
}

func TestDisassemble_MalformedCacheEntryFallsThrough(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	require.NoError(t, c.Set(context.Background(),
		"attribution:mellowagain@example.com", []byte("not json"), time.Minute))

	d := NewDisambiguator(newTestStore(t), WithAttributionCache(c))

	attr, err := d.Disassemble(context.Background(),
		NewSignature("", "mellowagain@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "mellowagain", attr.DisplayName)
	assert.True(t, attr.Linked())
}
