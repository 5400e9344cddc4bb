// Package auth implements HTTP Basic Authentication for the gateway: the
// credential parser, the store-backed verifier, the login gate that decides
// between challenging and verifying, and best-effort session identity
// resolution.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// DefaultRealm is the Basic auth realm used when none is configured.
const DefaultRealm = "avgitgw"

// Challenge describes a 401 response instructing the caller to retry with
// Basic credentials. The body is empty; ContentType echoes the caller's
// negotiated content type.
type Challenge struct {
	Realm       string
	ContentType string
}

// Header returns the WWW-Authenticate header value for this challenge.
func (c *Challenge) Header() string {
	return fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", c.Realm)
}

// Gate runs the Basic login flow: challenge when no credentials are
// present, otherwise parse and verify them.
type Gate struct {
	verifier *Verifier
	realm    string
	logger   observability.Logger
	metrics  *Metrics
}

// GateOption is a functional option for the gate.
type GateOption func(*Gate)

// WithGateLogger sets the logger.
func WithGateLogger(logger observability.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithGateMetrics sets the metrics.
func WithGateMetrics(metrics *Metrics) GateOption {
	return func(g *Gate) {
		g.metrics = metrics
	}
}

// NewGate creates a new authentication gate.
func NewGate(verifier *Verifier, realm string, opts ...GateOption) *Gate {
	if realm == "" {
		realm = DefaultRealm
	}

	g := &Gate{
		verifier: verifier,
		realm:    realm,
		logger:   observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Realm returns the configured realm.
func (g *Gate) Realm() string {
	return g.realm
}

// Login decides whether to challenge for credentials or verify the ones
// supplied.
//
// Exactly one of the three results is set: a user on success, a challenge
// when no Authorization header is present, or an error (a *Denial for
// credential failures, anything else for infrastructure failures).
func (g *Gate) Login(ctx context.Context, r *http.Request, contentType string) (*store.User, *Challenge, error) {
	start := time.Now()

	header := r.Header.Get("Authorization")
	if header == "" {
		g.metrics.RecordAttempt(OutcomeChallenge, time.Since(start))
		return nil, &Challenge{Realm: g.realm, ContentType: contentType}, nil
	}

	username, plaintext, err := ParseBasicAuth(header)
	if err != nil {
		g.metrics.RecordAttempt(OutcomeDenied, time.Since(start))
		return nil, nil, err
	}

	user, err := g.verifier.Verify(ctx, username, plaintext)
	if err != nil {
		if _, ok := AsDenial(err); ok {
			g.metrics.RecordAttempt(OutcomeDenied, time.Since(start))
		} else {
			g.metrics.RecordAttempt(OutcomeError, time.Since(start))
		}
		return nil, nil, err
	}

	g.logger.Debug("basic authentication succeeded",
		observability.Int64("user_id", user.ID))
	g.metrics.RecordAttempt(OutcomeSuccess, time.Since(start))

	return user, nil, nil
}
