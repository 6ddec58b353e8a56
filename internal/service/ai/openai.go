package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIModel 封装 OpenAI 兼容的聊天接口，同时支持图片输入。
type OpenAIModel struct {
	client   *openai.Client
	name     string
	sampling Sampling
}

// NewOpenAIModel creates an adapter for any OpenAI-compatible endpoint.
func NewOpenAIModel(apiKey, baseURL, modelName string, sampling Sampling) *OpenAIModel {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIModel{client: &client, name: modelName, sampling: sampling}
}

// Generate implements ChatModel.
func (m *OpenAIModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	params := m.params(convertToOpenAIMessages(input))
	return m.complete(ctx, params)
}

// Describe implements VisionModel by sending the image inline as a data URL.
func (m *OpenAIModel) Describe(ctx context.Context, system, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(parts))

	resp, err := m.complete(ctx, m.params(messages))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (m *OpenAIModel) params(messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    m.name,
		Messages: messages,
	}
	if m.sampling.Temperature != nil {
		params.Temperature = openai.Float(*m.sampling.Temperature)
	}
	if m.sampling.TopP != nil {
		params.TopP = openai.Float(*m.sampling.TopP)
	}
	if m.sampling.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*m.sampling.MaxTokens))
	}
	return params
}

func (m *OpenAIModel) complete(ctx context.Context, params openai.ChatCompletionNewParams) (*schema.Message, error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}
	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

func convertToOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case schema.Assistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}
