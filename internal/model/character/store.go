package character

import "strings"

// Store exposes catalog lookups for handlers and the profile synthesizer.
type Store interface {
	List() []Character
	FindByID(id string) (Character, bool)
	FindByName(name string) (Character, bool)
}

// MemoryStore implements Store with an immutable in-memory slice.
type MemoryStore struct {
	items []Character
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied characters.
func NewMemoryStore(items []Character) *MemoryStore {
	return &MemoryStore{items: append([]Character(nil), items...)}
}

// List returns the catalog in its declared order.
func (s *MemoryStore) List() []Character {
	return append([]Character(nil), s.items...)
}

// FindByID looks up a character by identifier.
func (s *MemoryStore) FindByID(id string) (Character, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Character{}, false
	}
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Character{}, false
}

// FindByName matches either the Chinese or the English name, ignoring case and
// surrounding whitespace.
func (s *MemoryStore) FindByName(name string) (Character, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Character{}, false
	}
	for _, item := range s.items {
		if strings.EqualFold(item.Name, name) || strings.EqualFold(item.NameEn, name) {
			return item, true
		}
	}
	return Character{}, false
}
