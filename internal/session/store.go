package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/docmint/internal/tool"
)

// Session is one browser session. Mu serializes requests of the session.
type Session struct {
	ID     string
	Mu     sync.Mutex
	Router *Router
}

// Store keeps sessions in memory with idle expiry and an LRU cap.
type Store struct {
	reg   *tool.Registry
	cache *expirable.LRU[string, *Session]
}

// NewStore creates a store. A zero ttl or maxSessions disables that limit.
func NewStore(reg *tool.Registry, ttl time.Duration, maxSessions int) *Store {
	return &Store{
		reg:   reg,
		cache: expirable.NewLRU[string, *Session](max(maxSessions, 0), nil, ttl),
	}
}

// New creates a session positioned on the home pseudo-tool.
func (st *Store) New() *Session {
	s := &Session{
		ID:     ulid.Make().String(),
		Router: NewRouter(st.reg),
	}
	st.cache.Add(s.ID, s)
	return s
}

// Get returns a live session and marks it used. The idle timer restarts.
func (st *Store) Get(id string) (*Session, bool) {
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, false
	}
	st.cache.Add(id, s)
	return s, true
}

// Resolve returns the session for id, creating a new one when id is
// unknown or expired. created reports whether a new session was made.
func (st *Store) Resolve(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.New(), true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return len(st.cache.Keys())
}
