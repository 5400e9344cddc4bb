package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Sentinel values substituted for malformed identity token segments. The
// id is guaranteed to match no real row, so a malformed token degrades to
// "no identity" instead of an error.
const (
	sentinelIdentityID = -1
	sentinelSession    = "unknown"
)

// IdentityResolver resolves session identity tokens of the form
// "<id>$<session>" to users, best-effort. It never fails: malformed input
// and lookup errors both yield no identity.
type IdentityResolver struct {
	users  store.UserStore
	logger observability.Logger
}

// NewIdentityResolver creates a new identity resolver.
func NewIdentityResolver(users store.UserStore, logger observability.Logger) *IdentityResolver {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &IdentityResolver{users: users, logger: logger}
}

// Resolve returns the user matching the identity token, or nil. An empty
// token means no identity was presented and resolves to nil without a
// lookup.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) *store.User {
	if token == "" {
		return nil
	}

	idPart, session, found := strings.Cut(token, "$")
	if !found {
		r.logger.Warn("identity token has no session segment",
			observability.String("token", token))
		session = sentinelSession
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		r.logger.Warn("unable to parse id from identity token",
			observability.String("token", token))
		id = sentinelIdentityID
	}

	user, err := r.users.ByIdentity(ctx, id, session)
	if err != nil {
		return nil
	}
	return user
}
