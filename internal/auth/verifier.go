package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/vyrodovalexey/avgitgw/internal/auth/password"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Verifier checks Basic credentials against the user store through the
// password verification capability.
type Verifier struct {
	users     store.UserStore
	passwords password.Verifier
	logger    observability.Logger
}

// VerifierOption is a functional option for the verifier.
type VerifierOption func(*Verifier)

// WithVerifierLogger sets the logger.
func WithVerifierLogger(logger observability.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a new credential verifier.
func NewVerifier(users store.UserStore, passwords password.Verifier, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		users:     users,
		passwords: passwords,
		logger:    observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify looks up the user by exact username and checks the supplied
// plaintext against the stored hash.
//
// An unknown username, a wrong password and unverifiable stored material
// all fail with the identical generic denial so usernames cannot be
// enumerated. Infrastructure failures are returned as-is, never disguised
// as a denial. The plaintext is never logged.
func (v *Verifier) Verify(ctx context.Context, username, plaintext string) (*store.User, error) {
	user, err := v.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, DenyIncorrectCredentials()
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := v.passwords.Verify(plaintext, user.PasswordHash)
	if err != nil {
		// Unverifiable stored material is an operator problem; log it
		// server-side but keep the caller-facing outcome uniform.
		v.logger.Error("stored password hash is unverifiable",
			observability.Int64("user_id", user.ID),
			observability.Error(err))
		return nil, DenyIncorrectCredentials()
	}
	if !ok {
		return nil, DenyIncorrectCredentials()
	}

	return user, nil
}
