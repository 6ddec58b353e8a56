package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/salt-byte/cinematic-mirror/backend/internal/config"
	"github.com/salt-byte/cinematic-mirror/backend/internal/metrics"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

// ErrEmptyCompletion 表示模型返回了空内容。
var ErrEmptyCompletion = errors.New("chat model returned empty content")

// ErrUnavailable is returned by AI-backed operations when no model is configured.
var ErrUnavailable = apperror.Unavailable("AI_UNAVAILABLE", "AI features are not configured")

// UpstreamError hides a vendor failure behind an opaque 500.
func UpstreamError(err error) error {
	return apperror.Upstream("LLM_FAILED", "chat completion failed", err)
}

// ChatModel is the slice of eino's model.ChatModel the services need. The Ark
// model satisfies it directly; the OpenAI and Gemini adapters implement it.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// VisionModel answers a prompt about a single still image.
type VisionModel interface {
	Describe(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error)
}

// NewChatModel 根据配置选择供应商并包装超时与指标。
func NewChatModel(ctx context.Context, cfg config.AIConfig, m *metrics.Metrics) (ChatModel, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("LLM credentials or model missing for provider %q", cfg.Provider)
	}

	var (
		base ChatModel
		err  error
	)
	switch cfg.Provider {
	case config.ProviderArk:
		base, err = cfg.NewArkChatModel(ctx)
	case config.ProviderOpenAI:
		base = NewOpenAIModel(cfg.APIKey, cfg.BaseURL, cfg.Model, samplingFromConfig(cfg))
	case config.ProviderGemini:
		base, err = NewGeminiModel(ctx, cfg.APIKey, cfg.Model, samplingFromConfig(cfg))
	default:
		err = fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	log.Printf("[ai] chat model ready provider=%s model=%s timeout=%s", cfg.Provider, cfg.Model, cfg.Timeout)
	return Instrument(base, string(cfg.Provider), cfg.Timeout, m), nil
}

// NewVisionModel 创建视频对话使用的多模态模型，并包装超时与指标。
func NewVisionModel(ctx context.Context, cfg config.VisionConfig, temperature *float64, m *metrics.Metrics) (VisionModel, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("vision model not configured")
	}

	var base VisionModel
	sampling := Sampling{Temperature: temperature}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = NewOpenAIModel(cfg.APIKey, cfg.BaseURL, cfg.Model, sampling)
	case config.ProviderGemini:
		gm, err := NewGeminiModel(ctx, cfg.APIKey, cfg.Model, sampling)
		if err != nil {
			return nil, err
		}
		base = gm
	default:
		return nil, fmt.Errorf("unsupported vision provider %q", cfg.Provider)
	}

	log.Printf("[ai] vision model ready provider=%s model=%s timeout=%s", cfg.Provider, cfg.Model, cfg.Timeout)
	return InstrumentVision(base, "vision-"+string(cfg.Provider), cfg.Timeout, m), nil
}

// Sampling carries the optional generation parameters shared by adapters.
type Sampling struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

func samplingFromConfig(cfg config.AIConfig) Sampling {
	return Sampling{Temperature: cfg.Temperature, TopP: cfg.TopP, MaxTokens: cfg.MaxTokens}
}

// instrumentedModel 为每次调用加上超时并记录耗时。
type instrumentedModel struct {
	next     ChatModel
	provider string
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// Instrument wraps a chat model with an optional per-call timeout and metrics.
func Instrument(next ChatModel, provider string, timeout time.Duration, m *metrics.Metrics) ChatModel {
	return &instrumentedModel{next: next, provider: provider, timeout: timeout, metrics: m}
}

func (im *instrumentedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if im.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := im.next.Generate(ctx, input, opts...)
	if err == nil && (resp == nil || resp.Content == "") {
		err = ErrEmptyCompletion
	}
	im.metrics.ObserveLLM(im.provider, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// instrumentedVision is the VisionModel counterpart of instrumentedModel.
type instrumentedVision struct {
	next     VisionModel
	provider string
	timeout  time.Duration
	metrics  *metrics.Metrics
}

// InstrumentVision wraps a vision model with an optional per-call timeout and metrics.
func InstrumentVision(next VisionModel, provider string, timeout time.Duration, m *metrics.Metrics) VisionModel {
	return &instrumentedVision{next: next, provider: provider, timeout: timeout, metrics: m}
}

func (iv *instrumentedVision) Describe(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := iv.next.Describe(ctx, system, prompt, image, mimeType)
	if err == nil && answer == "" {
		err = ErrEmptyCompletion
	}
	iv.metrics.ObserveLLM(iv.provider, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return answer, nil
}

// Complete runs one completion and returns the assistant text.
func Complete(ctx context.Context, m ChatModel, input []*schema.Message) (string, error) {
	resp, err := m.Generate(ctx, input)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Content, nil
}
