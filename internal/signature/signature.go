// Package signature attributes Git commit-author signatures to platform
// accounts. A signature's email is matched case-insensitively against
// registered accounts; unmatched signatures keep their display name, with
// a fixed placeholder for names that cannot be decoded as text.
package signature

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vyrodovalexey/avgitgw/internal/cache"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// GhostName is the display name used when a signature's name cannot be
// decoded as text.
const GhostName = "Ghost"

// defaultCacheTTL bounds how long an email to account mapping may be
// served without consulting the store again.
const defaultCacheTTL = 5 * time.Minute

// Signature is a raw commit-author signature. Name and Email come from
// commit object bytes and are not guaranteed to be valid UTF-8.
type Signature struct {
	Name  []byte
	Email []byte
}

// NewSignature builds a Signature from decoded name and email strings.
func NewSignature(name, email string) Signature {
	return Signature{Name: []byte(name), Email: []byte(email)}
}

// name returns the decoded display name, or false when it is empty or not
// valid UTF-8.
func (s Signature) name() (string, bool) {
	if len(s.Name) == 0 || !utf8.Valid(s.Name) {
		return "", false
	}
	return string(s.Name), true
}

// email returns the decoded email, or false when it is empty or not valid
// UTF-8.
func (s Signature) email() (string, bool) {
	if len(s.Email) == 0 || !utf8.Valid(s.Email) {
		return "", false
	}
	return string(s.Email), true
}

// Attribution is the result of resolving a signature.
type Attribution struct {
	// DisplayName is the registered username when the signature matched
	// an account, otherwise the signature's own name or GhostName.
	DisplayName string

	// UserID is the matched account id. Nil when no account matched.
	UserID *int64
}

// Linked reports whether the attribution points at a registered account.
func (a Attribution) Linked() bool {
	return a.UserID != nil
}

// cachedAttribution is the cache wire form of a matched attribution.
type cachedAttribution struct {
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}

// Disambiguator resolves signatures against the account store, with an
// optional cache in front since attribution lookups are read-heavy.
type Disambiguator struct {
	users    store.UserStore
	cache    cache.Cache
	cacheTTL time.Duration
	logger   observability.Logger
}

// DisambiguatorOption configures a Disambiguator.
type DisambiguatorOption func(*Disambiguator)

// WithAttributionCache fronts account lookups with the given cache.
func WithAttributionCache(c cache.Cache) DisambiguatorOption {
	return func(d *Disambiguator) {
		d.cache = c
	}
}

// WithAttributionCacheTTL overrides the cache entry lifetime.
func WithAttributionCacheTTL(ttl time.Duration) DisambiguatorOption {
	return func(d *Disambiguator) {
		if ttl > 0 {
			d.cacheTTL = ttl
		}
	}
}

// WithDisambiguatorLogger sets the logger.
func WithDisambiguatorLogger(logger observability.Logger) DisambiguatorOption {
	return func(d *Disambiguator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDisambiguator creates a Disambiguator backed by the given user store.
func NewDisambiguator(users store.UserStore, opts ...DisambiguatorOption) *Disambiguator {
	d := &Disambiguator{
		users:    users,
		cacheTTL: defaultCacheTTL,
		logger:   observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Disassemble resolves a signature to a display name and, when the email
// belongs to a registered account, that account's id. Store failures are
// returned as errors; a missing account is not a failure.
func (d *Disambiguator) Disassemble(ctx context.Context, sig Signature) (Attribution, error) {
	email, ok := sig.email()
	if !ok {
		return d.fallback(sig), nil
	}

	if attr, ok := d.fromCache(ctx, email); ok {
		return attr, nil
	}

	user, err := d.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return d.fallback(sig), nil
	}
	if err != nil {
		return Attribution{}, fmt.Errorf("look up account by email: %w", err)
	}

	d.toCache(ctx, email, user)

	id := user.ID
	return Attribution{DisplayName: user.Username, UserID: &id}, nil
}

// fallback attributes an unmatched signature to its own name, or to
// GhostName when the name is missing or undecodable.
func (d *Disambiguator) fallback(sig Signature) Attribution {
	if name, ok := sig.name(); ok {
		return Attribution{DisplayName: name}
	}
	return Attribution{DisplayName: GhostName}
}

func cacheKey(email string) string {
	return "attribution:" + strings.ToLower(email)
}

// fromCache returns a previously resolved attribution. Cache failures are
// treated as misses.
func (d *Disambiguator) fromCache(ctx context.Context, email string) (Attribution, bool) {
	if d.cache == nil {
		return Attribution{}, false
	}

	raw, err := d.cache.Get(ctx, cacheKey(email))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheDisabled) {
			d.logger.Debug("attribution cache read failed",
				observability.Error(err))
		}
		return Attribution{}, false
	}

	var entry cachedAttribution
	if err := json.Unmarshal(raw, &entry); err != nil {
		d.logger.Debug("attribution cache entry malformed",
			observability.Error(err))
		return Attribution{}, false
	}

	id := entry.UserID
	return Attribution{DisplayName: entry.Username, UserID: &id}, true
}

// toCache stores a resolved attribution, best-effort.
func (d *Disambiguator) toCache(ctx context.Context, email string, user *store.User) {
	if d.cache == nil {
		return
	}

	raw, err := json.Marshal(cachedAttribution{
		Username: user.Username,
		UserID:   user.ID,
	})
	if err != nil {
		return
	}

	if err := d.cache.Set(ctx, cacheKey(email), raw, d.cacheTTL); err != nil &&
		!errors.Is(err, cache.ErrCacheDisabled) {
		d.logger.Debug("attribution cache write failed",
			observability.Error(err))
	}
}
