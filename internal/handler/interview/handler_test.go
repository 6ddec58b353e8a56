package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/salt-byte/cinematic-mirror/backend/internal/middleware"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	interviewService "github.com/salt-byte/cinematic-mirror/backend/internal/service/interview"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
)

type queueModel struct {
	mu      sync.Mutex
	replies []string
}

func (m *queueModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reply := "Go on."
	if len(m.replies) > 0 {
		reply, m.replies = m.replies[0], m.replies[1:]
	}
	return schema.AssistantMessage(reply, nil), nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func setupRouter(chatModel *queueModel) (*chi.Mux, *storage.MemoryProfileRepo) {
	profiles := storage.NewMemoryProfileRepo()
	deps := interviewService.Deps{
		Sessions: chatservice.NewStore(),
		Catalog:  character.NewMemoryStore(character.Seed()),
		Profiles: profiles,
		Shadows:  storage.NewMemorySessionShadowRepo(),
	}
	if chatModel != nil {
		deps.Model = chatModel
	}
	handler := New(interviewService.NewService(deps))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if owner := req.Header.Get("X-Test-Owner"); owner != "" {
				req = req.WithContext(middleware.WithOwnerID(req.Context(), owner))
			}
			next.ServeHTTP(w, req)
		})
	})
	handler.RegisterRoutes(r)
	return r, profiles
}

func doRequest(t *testing.T, r http.Handler, method, path, owner string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-Test-Owner", owner)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v (%s)", err, resp.Body.String())
	}
	return resp, env
}

func startSession(t *testing.T, r http.Handler) string {
	t.Helper()
	resp, env := doRequest(t, r, http.MethodPost, "/interview/start", "user-1", map[string]string{"displayName": "Ada", "language": "en"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var started struct {
		SessionID      string `json:"sessionId"`
		InitialMessage struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"initialMessage"`
		Round int `json:"round"`
	}
	if err := json.Unmarshal(env.Data, &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if started.SessionID == "" || started.InitialMessage.Role != "model" || started.Round != 1 {
		t.Fatalf("unexpected start payload %+v", started)
	}
	return started.SessionID
}

func TestStartRequiresOwner(t *testing.T) {
	r, _ := setupRouter(&queueModel{})
	resp, env := doRequest(t, r, http.MethodPost, "/interview/start", "", nil)

	if resp.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401 envelope, got %d %+v", resp.Code, env)
	}
}

func TestStartWithoutModelIsUnavailable(t *testing.T) {
	r, _ := setupRouter(nil)
	resp, _ := doRequest(t, r, http.MethodPost, "/interview/start", "user-1", nil)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestStartRejectsMalformedBody(t *testing.T) {
	r, _ := setupRouter(&queueModel{})
	req := httptest.NewRequest(http.MethodPost, "/interview/start", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-Test-Owner", "user-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestMessageFlow(t *testing.T) {
	r, _ := setupRouter(&queueModel{replies: []string{"Action.", "Who taught you to lie?"}})
	id := startSession(t, r)

	resp, env := doRequest(t, r, http.MethodPost, "/interview/session/"+id+"/message", "user-1", map[string]string{"message": "My grandmother."})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var turn struct {
		Response   string `json:"response"`
		IsFinished bool   `json:"isFinished"`
		Round      int    `json:"round"`
	}
	if err := json.Unmarshal(env.Data, &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.Response != "Who taught you to lie?" || turn.IsFinished || turn.Round != 2 {
		t.Fatalf("unexpected turn %+v", turn)
	}

	resp, env = doRequest(t, r, http.MethodGet, "/interview/session/"+id, "user-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var view struct {
		Messages []json.RawMessage `json:"messages"`
	}
	_ = json.Unmarshal(env.Data, &view)
	if len(view.Messages) != 3 {
		t.Fatalf("expected 3 display messages, got %d", len(view.Messages))
	}
}

func TestMessageErrors(t *testing.T) {
	r, _ := setupRouter(&queueModel{})
	id := startSession(t, r)

	resp, env := doRequest(t, r, http.MethodPost, "/interview/session/missing/message", "user-1", map[string]string{"message": "hi"})
	if resp.Code != http.StatusNotFound || env.Error == "" {
		t.Fatalf("expected 404 with error text, got %d %+v", resp.Code, env)
	}

	resp, env = doRequest(t, r, http.MethodPost, "/interview/session/"+id+"/message", "user-1", map[string]string{"message": "   "})
	if resp.Code != http.StatusBadRequest || env.Code != "EMPTY_MESSAGE" {
		t.Fatalf("expected 400 EMPTY_MESSAGE, got %d %+v", resp.Code, env)
	}
}

func TestGenerateProfile(t *testing.T) {
	chatModel := &queueModel{}
	r, profiles := setupRouter(chatModel)
	id := startSession(t, r)

	chatModel.mu.Lock()
	chatModel.replies = []string{`Here you go: {"title": "The Quiet Witness", "matches": [{"name": "Léon"}]}`}
	chatModel.mu.Unlock()

	resp, env := doRequest(t, r, http.MethodPost, "/interview/session/"+id+"/generate", "user-1", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var p profile.PersonalityProfile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if p.Title != "The Quiet Witness" || p.OwnerID != "user-1" || len(p.Matches) != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if profiles.Len() != 1 {
		t.Fatalf("expected profile to be stored")
	}

	resp, _ = doRequest(t, r, http.MethodGet, "/interview/session/"+id, "user-1", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected live session to be gone, got %d", resp.Code)
	}
}

func TestGenerateProfileFormatError(t *testing.T) {
	chatModel := &queueModel{}
	r, _ := setupRouter(chatModel)
	id := startSession(t, r)

	chatModel.mu.Lock()
	chatModel.replies = []string{"I cannot answer in JSON today."}
	chatModel.mu.Unlock()

	resp, env := doRequest(t, r, http.MethodPost, "/interview/session/"+id+"/generate", "user-1", nil)
	if resp.Code != http.StatusInternalServerError || env.Code != "PROFILE_FORMAT_ERROR" {
		t.Fatalf("expected 500 PROFILE_FORMAT_ERROR, got %d %+v", resp.Code, env)
	}
}

func TestProfilesAreScopedToOwner(t *testing.T) {
	r, profiles := setupRouter(&queueModel{})
	_ = profiles.Create(context.Background(), profile.PersonalityProfile{ID: "p-1", OwnerID: "user-1", Title: "Mine", CreatedAt: time.Now()})

	resp, env := doRequest(t, r, http.MethodGet, "/interview/profiles", "user-2", nil)
	if resp.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("expected empty list for other owner, got %d %s", resp.Code, env.Data)
	}

	resp, _ = doRequest(t, r, http.MethodGet, "/interview/profiles/p-1", "user-2", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign profile, got %d", resp.Code)
	}

	resp, env = doRequest(t, r, http.MethodGet, "/interview/profiles/p-1", "user-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var p profile.PersonalityProfile
	_ = json.Unmarshal(env.Data, &p)
	if p.Title != "Mine" {
		t.Fatalf("unexpected profile %+v", p)
	}
}
