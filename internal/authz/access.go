// Package authz applies the repository visibility policy in front of the
// git smart-HTTP endpoints.
package authz

import (
	"context"
	"net/http"

	"github.com/vyrodovalexey/avgitgw/internal/auth"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Decision is the successful outcome of an access check. User is nil for
// anonymous access to a public repository.
type Decision struct {
	User *store.User
	Repo *store.Repository
}

// Access decides, per request, whether a caller may reach a repository.
type Access struct {
	gate   *auth.Gate
	logger observability.Logger
}

// AccessOption is a functional option for Access.
type AccessOption func(*Access)

// WithAccessLogger sets the logger.
func WithAccessLogger(logger observability.Logger) AccessOption {
	return func(a *Access) {
		a.logger = logger
	}
}

// NewAccess creates a new access gate on top of the authentication gate.
func NewAccess(gate *auth.Gate, opts ...AccessOption) *Access {
	a := &Access{
		gate:   gate,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Decide applies the visibility policy to an optional repository.
//
// A public repository is readable anonymously; no credential parsing or
// store access happens at all. Any other visibility runs the login flow
// and propagates its challenge or denial unchanged.
//
// When the repository does not exist the login flow still runs, so the
// observable work matches the private-repository branch, but its outcome
// is discarded and the caller always gets a detail-free 404. A missing
// Authorization header therefore yields 404 rather than the 401 challenge
// the private branch would produce; that asymmetry is inherited behavior,
// kept deliberately (see DESIGN.md). Infrastructure failures are the one
// exception: they propagate as themselves and are never folded into the
// 404.
func (a *Access) Decide(ctx context.Context, repo *store.Repository, contentType string, r *http.Request) (*Decision, *auth.Challenge, error) {
	return a.decide(ctx, repo, contentType, r, false)
}

// DecideWrite is Decide for push operations. Writes always require
// authentication, so the public-repository anonymous pass-through does not
// apply; everything else behaves as Decide.
func (a *Access) DecideWrite(ctx context.Context, repo *store.Repository, contentType string, r *http.Request) (*Decision, *auth.Challenge, error) {
	return a.decide(ctx, repo, contentType, r, true)
}

func (a *Access) decide(ctx context.Context, repo *store.Repository, contentType string, r *http.Request, requireAuth bool) (*Decision, *auth.Challenge, error) {
	if repo != nil {
		if requireAuth || repo.Visibility != store.VisibilityPublic {
			user, challenge, err := a.gate.Login(ctx, r, contentType)
			if err != nil {
				return nil, nil, err
			}
			if challenge != nil {
				return nil, challenge, nil
			}
			return &Decision{User: user, Repo: repo}, nil, nil
		}

		return &Decision{Repo: repo}, nil, nil
	}

	// Exercise the credential path even though the repository does not
	// exist, so response timing does not reveal which of the two cases the
	// caller hit.
	_, _, err := a.gate.Login(ctx, r, contentType)
	if err != nil {
		if _, ok := auth.AsDenial(err); !ok {
			return nil, nil, err
		}
	}

	return nil, nil, auth.DenyNotFound()
}
