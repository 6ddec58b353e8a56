package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server        ServerConfig
	AI            AIConfig
	Vision        VisionConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	DefaultLocale locale.Locale
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:        server,
		AI:            ai,
		Vision:        loadVisionConfig(ai),
		Database:      database,
		Auth:          AuthConfig{JWTSecret: strings.TrimSpace(os.Getenv("SUPABASE_JWT_SECRET"))},
		RateLimit:     rateLimit,
		DefaultLocale: locale.Parse(os.Getenv("DEFAULT_LOCALE"), locale.ZH),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Provider names a chat-completion vendor.
type Provider string

const (
	ProviderArk    Provider = "ark"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider    Provider
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	// Timeout bounds every chat completion; zero leaves it to the vendor client.
	Timeout time.Duration
}

// VisionConfig 描述视频对话使用的多模态模型。
type VisionConfig struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
	// Timeout is inherited from LLM_TIMEOUT_SECONDS.
	Timeout time.Duration
}

// DatabaseConfig 描述持久化配置。
type DatabaseConfig struct {
	URL         string
	MaxConns    int
	AutoMigrate bool
}

// AuthConfig 描述 Supabase 访问令牌校验配置。
type AuthConfig struct {
	JWTSecret string
}

// RateLimitConfig 描述按用户限流配置。
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	if c.Provider == ProviderArk {
		return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
	}
	return c.APIKey != ""
}

// Enabled 表示是否配置了多模态模型。
func (c VisionConfig) Enabled() bool {
	return c.Model != "" && c.APIKey != ""
}

// Float32Temperature converts the optional temperature for vendor SDKs.
func (c AIConfig) Float32Temperature() *float32 {
	if c.Temperature == nil {
		return nil
	}
	val := float32(*c.Temperature)
	return &val
}

// Float32TopP converts the optional top-p for vendor SDKs.
func (c AIConfig) Float32TopP() *float32 {
	if c.TopP == nil {
		return nil
	}
	val := float32(*c.TopP)
	return &val
}

// NewArkChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewArkChatModel(ctx context.Context) (*ark.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 LLM_API_KEY + LLM_MODEL 或 AK/SK 组合")
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: c.Float32Temperature(),
		TopP:        c.Float32TopP(),
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider, err := parseProvider("LLM_PROVIDER", ProviderOpenAI)
	if err != nil {
		return AIConfig{}, err
	}

	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("LLM_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	var timeout time.Duration
	if seconds, err := parseOptionalIntEnv("LLM_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if seconds != nil && *seconds > 0 {
		timeout = time.Duration(*seconds) * time.Second
	}

	return AIConfig{
		Provider:    provider,
		APIKey:      strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("LLM_MODEL")),
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", defaultBaseURL(provider)),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}, nil
}

// loadVisionConfig 未单独配置时沿用文本模型的供应商与密钥。
func loadVisionConfig(ai AIConfig) VisionConfig {
	provider := Provider(strings.ToLower(getEnvOrDefault("VISION_PROVIDER", string(ai.Provider))))
	if provider == ProviderArk {
		// Ark 的多模态走 OpenAI 兼容接口。
		provider = ProviderOpenAI
	}
	return VisionConfig{
		Provider: provider,
		APIKey:   getEnvOrDefault("VISION_API_KEY", ai.APIKey),
		Model:    strings.TrimSpace(os.Getenv("VISION_MODEL")),
		BaseURL:  getEnvOrDefault("VISION_BASE_URL", ai.BaseURL),
		Timeout:  ai.Timeout,
	}
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	autoMigrate, err := parseBoolEnv("DB_AUTO_MIGRATE", false)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxConns := 10
	if override, err := parseOptionalIntEnv("DB_MAX_CONNS"); err != nil {
		return DatabaseConfig{}, err
	} else if override != nil && *override > 0 {
		maxConns = *override
	}

	return DatabaseConfig{
		URL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxConns:    maxConns,
		AutoMigrate: autoMigrate,
	}, nil
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	rps := 2.0
	if override, err := parseOptionalFloatEnv("RATE_LIMIT_RPS"); err != nil {
		return RateLimitConfig{}, err
	} else if override != nil {
		rps = *override
	}

	burst := 5
	if override, err := parseOptionalIntEnv("RATE_LIMIT_BURST"); err != nil {
		return RateLimitConfig{}, err
	} else if override != nil {
		burst = *override
	}

	return RateLimitConfig{RequestsPerSecond: rps, Burst: burst}, nil
}

func defaultBaseURL(provider Provider) string {
	switch provider {
	case ProviderArk:
		return "https://ark.cn-beijing.volces.com/api/v3"
	case ProviderOpenAI:
		return "https://api.siliconflow.cn/v1"
	default:
		return ""
	}
}

func parseProvider(key string, defaultValue Provider) (Provider, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return defaultValue, nil
	}
	switch Provider(raw) {
	case ProviderArk, ProviderOpenAI, ProviderGemini:
		return Provider(raw), nil
	default:
		return "", fmt.Errorf("invalid %s value %q", key, raw)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
