package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/salt-byte/cinematic-mirror/backend/internal/metrics"
	middlewarePkg "github.com/salt-byte/cinematic-mirror/backend/internal/middleware"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	consultationService "github.com/salt-byte/cinematic-mirror/backend/internal/service/consultation"
	interviewService "github.com/salt-byte/cinematic-mirror/backend/internal/service/interview"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
)

const testSecret = "router-test-secret-router-test-secret"

func newTestRouter() http.Handler {
	sessions := chatservice.NewStore()
	characters := character.NewMemoryStore(character.Seed())
	profiles := storage.NewMemoryProfileRepo()

	return NewRouter(Dependencies{
		Characters: characters,
		Interview: interviewService.NewService(interviewService.Deps{
			Sessions: sessions,
			Catalog:  characters,
			Profiles: profiles,
		}),
		Consultation: consultationService.NewService(consultationService.Deps{
			Sessions: sessions,
			Profiles: profiles,
		}),
		Auth:    middlewarePkg.NewAuthenticator(testSecret),
		Metrics: metrics.New(),
	})
}

func bearer(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + signed
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/api/health", "/api/characters"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	r := newTestRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/interview/profiles", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/interview/profiles", nil)
	req.Header.Set("Authorization", bearer(t))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.Code)
	}
}

func TestAIRoutesWithoutModelAreUnavailable(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/interview/start", nil)
	req.Header.Set("Authorization", bearer(t))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestMetricsEndpointRecordsRoutes(t *testing.T) {
	r := newTestRouter()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/api/health"`) {
		t.Fatalf("expected health route in metrics output")
	}
}
