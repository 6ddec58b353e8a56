package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// GeminiModel 封装 Gemini API 的 GenerateContent 调用。
type GeminiModel struct {
	client   *genai.Client
	name     string
	sampling Sampling
}

// NewGeminiModel creates a Gemini adapter backed by the Gemini API.
func NewGeminiModel(ctx context.Context, apiKey, modelName string, sampling Sampling) (*GeminiModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiModel{client: client, name: modelName, sampling: sampling}, nil
}

// Generate implements ChatModel. System messages become the system instruction.
func (g *GeminiModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	system, contents := convertToGeminiContents(input)
	return g.generate(ctx, system, contents)
}

// Describe implements VisionModel with the image as an inline part.
func (g *GeminiModel) Describe(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	resp, err := g.generate(ctx, system, contents)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (g *GeminiModel) generate(ctx context.Context, system string, contents []*genai.Content) (*schema.Message, error) {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if g.sampling.Temperature != nil {
		val := float32(*g.sampling.Temperature)
		cfg.Temperature = &val
	}
	if g.sampling.TopP != nil {
		val := float32(*g.sampling.TopP)
		cfg.TopP = &val
	}
	if g.sampling.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*g.sampling.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.name, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return nil, ErrEmptyCompletion
	}
	return schema.AssistantMessage(resp.Text(), nil), nil
}

// convertToGeminiContents folds system messages into one instruction and maps
// assistant turns onto the "model" role.
func convertToGeminiContents(input []*schema.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
