package storage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
)

// MemoryProfileRepo keeps profiles in process memory.
type MemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]profile.PersonalityProfile
}

// NewMemoryProfileRepo creates an empty in-memory profile repository.
func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{profiles: make(map[string]profile.PersonalityProfile)}
}

func (r *MemoryProfileRepo) Create(_ context.Context, p profile.PersonalityProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}

func (r *MemoryProfileRepo) FindForOwner(_ context.Context, id, ownerID string) (profile.PersonalityProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok || p.OwnerID != ownerID {
		return profile.PersonalityProfile{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryProfileRepo) ListByOwner(_ context.Context, ownerID string) ([]profile.PersonalityProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []profile.PersonalityProfile{}
	for _, p := range r.profiles {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Len reports how many profiles are stored.
func (r *MemoryProfileRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// MemorySessionShadowRepo keeps shadow rows in process memory.
type MemorySessionShadowRepo struct {
	mu      sync.RWMutex
	shadows map[string]SessionShadow
}

// NewMemorySessionShadowRepo creates an empty in-memory shadow repository.
func NewMemorySessionShadowRepo() *MemorySessionShadowRepo {
	return &MemorySessionShadowRepo{shadows: make(map[string]SessionShadow)}
}

func (r *MemorySessionShadowRepo) Create(_ context.Context, shadow SessionShadow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if shadow.CreatedAt.IsZero() {
		shadow.CreatedAt = now
	}
	shadow.UpdatedAt = now
	shadow.Messages = slices.Clone(shadow.Messages)
	r.shadows[shadow.ID] = shadow
	return nil
}

func (r *MemorySessionShadowRepo) UpdateProgress(_ context.Context, id string, round int, status string, messages []chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	shadow, ok := r.shadows[id]
	if !ok {
		return ErrNotFound
	}
	shadow.Round = round
	shadow.Status = status
	shadow.Messages = slices.Clone(messages)
	shadow.UpdatedAt = time.Now().UTC()
	r.shadows[id] = shadow
	return nil
}

func (r *MemorySessionShadowRepo) Complete(_ context.Context, id, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	shadow, ok := r.shadows[id]
	if !ok {
		return ErrNotFound
	}
	shadow.Status = StatusCompleted
	shadow.ProfileID = profileID
	shadow.UpdatedAt = time.Now().UTC()
	r.shadows[id] = shadow
	return nil
}

func (r *MemorySessionShadowRepo) Find(_ context.Context, id string) (SessionShadow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shadow, ok := r.shadows[id]
	if !ok {
		return SessionShadow{}, ErrNotFound
	}
	shadow.Messages = slices.Clone(shadow.Messages)
	return shadow, nil
}
