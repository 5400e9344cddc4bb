// Package store defines the persistence capabilities consumed by the
// gateway. The gateway only reads; rows are owned by the hosting service.
package store

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no row matched the lookup.
var ErrNotFound = errors.New("not found")

// Visibility controls whether anonymous read access to a repository is
// permitted.
type Visibility string

// Repository visibilities.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityInternal Visibility = "internal"
	VisibilityPrivate  Visibility = "private"
)

// User is a platform account as read from the persistence layer.
type User struct {
	// ID is the numeric account id.
	ID int64

	// Username is the login name. Lookups through UserStore.ByUsername are
	// exact-case even though registration enforces lowercase uniqueness;
	// see the ByUsername doc comment.
	Username string

	// Email is the account's primary email address.
	Email string

	// PasswordHash is the stored password verifier in PHC string format.
	PasswordHash string

	// Session is the account's current session token.
	Session string
}

// Repository is a hosted repository as read from the persistence layer.
type Repository struct {
	ID         int64
	OwnerID    int64
	Name       string
	Visibility Visibility
}

// UserStore is the user lookup capability. Implementations perform at most
// one round trip per call and honor context cancellation. A miss is
// reported as ErrNotFound; any other error is an infrastructure failure and
// must never be mistaken for a miss.
type UserStore interface {
	// ByUsername returns the single user whose username matches exactly.
	//
	// The match is case-sensitive while registration enforces lowercase
	// uniqueness, so usernames stored with uppercase letters are
	// unreachable through this lookup. Canonicalization should be decided
	// here, in one place, if that ever changes.
	ByUsername(ctx context.Context, username string) (*User, error)

	// ByIdentity returns the single user matching both id and session.
	ByIdentity(ctx context.Context, id int64, session string) (*User, error)

	// ByEmail returns the single user whose email matches
	// case-insensitively.
	ByEmail(ctx context.Context, email string) (*User, error)
}

// RepositoryStore is the repository lookup capability consumed by the HTTP
// boundary to resolve the optional repository handed to the access gate.
type RepositoryStore interface {
	// ByOwnerAndName returns the repository owned by the named account.
	ByOwnerAndName(ctx context.Context, owner, name string) (*Repository, error)
}
