// Package memory provides an in-memory store implementation, used in tests
// and for single-node development setups.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Store is an in-memory implementation of store.UserStore and
// store.RepositoryStore. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users map[int64]*store.User
	repos map[string]*store.Repository
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users: make(map[int64]*store.User),
		repos: make(map[string]*store.Repository),
	}
}

// AddUser inserts or replaces a user.
func (s *Store) AddUser(user *store.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
}

// RemoveUser deletes a user by id. Removing an absent id is a no-op.
func (s *Store) RemoveUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// AddRepository inserts or replaces a repository keyed by owner username
// and repository name.
func (s *Store) AddRepository(owner string, repo *store.Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *repo
	s.repos[repoKey(owner, r.Name)] = &r
}

// ByUsername returns the user with an exact-case username match.
func (s *Store) ByUsername(ctx context.Context, username string) (*store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

// ByIdentity returns the user matching both id and session.
func (s *Store) ByIdentity(ctx context.Context, id int64, session string) (*store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok && u.Session == session {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

// ByEmail returns the user with a case-insensitive email match.
func (s *Store) ByEmail(ctx context.Context, email string) (*store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

// ByOwnerAndName returns the repository owned by the named account.
func (s *Store) ByOwnerAndName(ctx context.Context, owner, name string) (*store.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.repos[repoKey(owner, name)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func repoKey(owner, name string) string {
	return fmt.Sprintf("%s/%s", owner, name)
}
