package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Compile-time interface compliance.
var (
	_ store.UserStore       = (*Store)(nil)
	_ store.RepositoryStore = (*Store)(nil)
)

func TestNew_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestStore_Close_Idempotent(t *testing.T) {
	t.Parallel()

	s := &Store{}
	s.Close()
	s.Close()
}
