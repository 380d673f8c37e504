package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/copyleftdev/clinkerline/internal/surrogate"
)

// session binds one tuning loop to its search state.
type session struct {
	search  *surrogate.Search
	created time.Time
}

// sessionRegistry holds the live tuning sessions keyed by id. Sessions
// are created explicitly and live until deleted; the searches inside
// carry their own locking, so the registry only guards the map.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
	}
}

// add registers a search under a fresh id.
func (r *sessionRegistry) add(search *surrogate.Search) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &session{
		search:  search,
		created: time.Now(),
	}
	r.mu.Unlock()

	return id
}

func (r *sessionRegistry) get(id string) (*surrogate.Search, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.search, true
}

func (r *sessionRegistry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *sessionRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *sessionRegistry) clear() {
	r.mu.Lock()
	r.sessions = make(map[string]*session)
	r.mu.Unlock()
}
