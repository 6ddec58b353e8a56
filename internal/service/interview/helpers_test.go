package interview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
)

// scriptedModel replays canned replies and records every input it was given.
type scriptedModel struct {
	mu       sync.Mutex
	replies  []string
	fallback string
	err      error
	inputs   [][]*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	reply := m.fallback
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (m *scriptedModel) push(replies ...string) {
	m.mu.Lock()
	m.replies = append(m.replies, replies...)
	m.mu.Unlock()
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

func (m *scriptedModel) lastInput() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[len(m.inputs)-1]
}

// failingShadows fails every write, as an unreachable database would.
type failingShadows struct{}

var errShadowDown = errors.New("shadow store down")

func (failingShadows) Create(context.Context, storage.SessionShadow) error { return errShadowDown }
func (failingShadows) UpdateProgress(context.Context, string, int, string, []chat.Message) error {
	return errShadowDown
}
func (failingShadows) Complete(context.Context, string, string) error { return errShadowDown }
func (failingShadows) Find(context.Context, string) (storage.SessionShadow, error) {
	return storage.SessionShadow{}, errShadowDown
}

type fixture struct {
	svc      *Service
	model    *scriptedModel
	sessions *chatservice.Store
	profiles *storage.MemoryProfileRepo
	shadows  *storage.MemorySessionShadowRepo
	catalog  *character.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		model:    &scriptedModel{fallback: "Tell me more."},
		sessions: chatservice.NewStore(),
		profiles: storage.NewMemoryProfileRepo(),
		shadows:  storage.NewMemorySessionShadowRepo(),
		catalog:  character.NewMemoryStore(character.Seed()),
	}
	f.svc = NewService(Deps{
		Sessions: f.sessions,
		Model:    f.model,
		Catalog:  f.catalog,
		Profiles: f.profiles,
		Shadows:  f.shadows,
	})
	return f
}
