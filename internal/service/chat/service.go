package chat

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

// ErrSessionNotFound is returned for ids the registry does not hold.
var ErrSessionNotFound = apperror.NotFound("SESSION_NOT_FOUND", "session not found")

// Store is the in-memory session registry. Entries never expire and are lost on
// restart. Concurrent mutation of one session by two callers is not serialized
// beyond the individual Mutate calls.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

// NewStore bootstraps an empty registry.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*chat.Session)}
}

// Create registers a new session and returns its id.
func (s *Store) Create(state chat.Session) string {
	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.sessions[state.ID] = &state
	s.mu.Unlock()

	return state.ID
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// Mutate applies fn to the stored session under the registry lock and returns the
// resulting snapshot. fn must not block. If fn fails nothing is written back.
func (s *Store) Mutate(id string, fn func(*chat.Session) error) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	working := snapshot(session)
	if err := fn(&working); err != nil {
		return chat.Session{}, err
	}
	working.ID = session.ID
	s.sessions[id] = &working

	return snapshot(&working), nil
}

// Delete removes the session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func snapshot(session *chat.Session) chat.Session {
	copied := *session
	copied.Transcript = slices.Clone(session.Transcript)
	copied.Messages = slices.Clone(session.Messages)
	return copied
}
