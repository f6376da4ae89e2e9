package server

import (
	"context"
	"errors"
	"sync"

	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/pkg/models"
)

// sessionEntry pairs a signed-in session with its application cache.
type sessionEntry struct {
	session *auth.Session
	cache   *cache.Cache
}

// registry keeps one cache per session token.
type registry struct {
	auth     Authenticator
	newCache func(*auth.Session) *cache.Cache

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func newRegistry(authenticator Authenticator, newCache func(*auth.Session) *cache.Cache) *registry {
	return &registry{
		auth:     authenticator,
		newCache: newCache,
		entries:  make(map[string]*sessionEntry),
	}
}

// register adds a freshly issued session.
func (r *registry) register(session *auth.Session) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &sessionEntry{session: session, cache: r.newCache(session)}
	r.entries[session.Token()] = entry
	return entry
}

// acquire returns the entry for token. The session is checked against the
// store on every call, so a session signed out elsewhere stops authorizing
// requests and its held records are discarded.
func (r *registry) acquire(ctx context.Context, token string) (*sessionEntry, error) {
	session, err := r.auth.Resume(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			r.release(token)
		}
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[token]; ok {
		return existing, nil
	}
	entry := &sessionEntry{session: session, cache: r.newCache(session)}
	r.entries[token] = entry
	return entry, nil
}

// release forgets token and discards its cached records.
func (r *registry) release(token string) {
	r.mu.Lock()
	entry, ok := r.entries[token]
	delete(r.entries, token)
	r.mu.Unlock()

	if ok {
		entry.cache.SetSession(nil)
	}
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
