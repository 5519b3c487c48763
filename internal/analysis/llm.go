package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Collaborator is the hosted analysis model: structured input goes in, a JSON
// document matching the requested schema comes back, or the call fails.
type Collaborator interface {
	Generate(ctx context.Context, systemPrompt, prompt string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error)
	GenerateWithImage(ctx context.Context, systemPrompt, prompt, imageDataURI string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error)
}

const llmTimeout = 50 * time.Second

// OpenAIClient wraps the OpenAI chat-completions API with schema-constrained
// responses.
type OpenAIClient struct {
	client openai.Client
	model  string
}

var _ Collaborator = (*OpenAIClient)(nil)

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAIClient) Generate(ctx context.Context, systemPrompt, prompt string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(prompt),
	}
	return o.complete(ctx, messages, format)
}

func (o *OpenAIClient) GenerateWithImage(ctx context.Context, systemPrompt, prompt, imageDataURI string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageDataURI}),
		}),
	}
	return o.complete(ctx, messages, format)
}

func (o *OpenAIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	chatReq := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    messages,
		Temperature: openai.Float(0.2),
	}
	chatReq.ResponseFormat = format

	res, err := o.client.Chat.Completions.New(ctx, chatReq)
	if err != nil {
		slog.Error("openai error: chat completions failed", "error", err)
		return "", fmt.Errorf("analysis collaborator call failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("analysis collaborator returned no choices")
	}

	return res.Choices[0].Message.Content, nil
}
