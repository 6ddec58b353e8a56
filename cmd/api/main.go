package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/salt-byte/cinematic-mirror/backend/internal/config"
	"github.com/salt-byte/cinematic-mirror/backend/internal/handler"
	"github.com/salt-byte/cinematic-mirror/backend/internal/metrics"
	"github.com/salt-byte/cinematic-mirror/backend/internal/middleware"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/ai"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/consultation"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/interview"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	m := metrics.New()
	characters := character.NewMemoryStore(character.Seed())
	sessions := chatservice.NewStore()

	profiles, shadows := openRepositories(cfg.Database)

	// 未配置大模型时仍然启动，AI 路由返回 503
	var chatModel ai.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = ai.NewChatModel(ctx, cfg.AI, m)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			chatModel = nil
		}
	} else {
		log.Printf("LLM 凭证未配置 (provider=%s)，跳过 AI 功能初始化", cfg.AI.Provider)
	}

	var visionModel ai.VisionModel
	if cfg.Vision.Enabled() {
		visionModel, err = ai.NewVisionModel(ctx, cfg.Vision, cfg.AI.Temperature, m)
		if err != nil {
			log.Printf("warning: failed to initialize vision model: %v", err)
			visionModel = nil
		}
	} else {
		log.Println("vision model not configured, video chat will answer text-only")
	}

	interviewSvc := interview.NewService(interview.Deps{
		Sessions:      sessions,
		Model:         chatModel,
		Catalog:       characters,
		Profiles:      profiles,
		Shadows:       shadows,
		Metrics:       m,
		DefaultLocale: cfg.DefaultLocale,
	})
	consultationSvc := consultation.NewService(consultation.Deps{
		Sessions:      sessions,
		Model:         chatModel,
		Vision:        visionModel,
		Profiles:      profiles,
		Metrics:       m,
		DefaultLocale: cfg.DefaultLocale,
	})

	limiter := middleware.NewRateLimiter(middleware.RateLimiterOptions{
		Limit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
		Burst: cfg.RateLimit.Burst,
	})
	go limiter.Run(ctx)

	router := handler.NewRouter(handler.Dependencies{
		Characters:   characters,
		Interview:    interviewSvc,
		Consultation: consultationSvc,
		Auth:         middleware.NewAuthenticator(cfg.Auth.JWTSecret),
		RateLimiter:  limiter,
		Metrics:      m,
	})

	startServer(ctx, cfg.Server, router)
}

// openRepositories connects to Postgres, or falls back to process-local
// repositories when no database is configured.
func openRepositories(cfg config.DatabaseConfig) (storage.ProfileRepository, storage.SessionShadowRepository) {
	if cfg.URL == "" {
		log.Println("warning: DATABASE_URL not set, profiles are kept in memory and lost on restart")
		return storage.NewMemoryProfileRepo(), storage.NewMemorySessionShadowRepo()
	}

	db, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	log.Println("database connection established")
	return storage.NewProfileRepo(db), storage.NewSessionShadowRepo(db)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Cinematic Mirror backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
