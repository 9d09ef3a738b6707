package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/247convo/convo-backend/internal/tenancy"
	"github.com/247convo/convo-backend/internal/tenants"
)

// OpenAIClient implements LLMClient and Embedder against the OpenAI API.
// Some tenants bring their own API key (OPENAI_API_KEY_<CLIENT>); the client
// resolves the key per call from the client id carried in the context and
// caches one SDK client per key.
type OpenAIClient struct {
	sharedKey      string
	embeddingModel string

	mu      sync.Mutex
	clients map[string]*openai.Client
}

// NewOpenAIClient creates the client with the shared API key.
func NewOpenAIClient(sharedKey, embeddingModel string) (*OpenAIClient, error) {
	if strings.TrimSpace(sharedKey) == "" {
		return nil, errors.New("chat: openai api key is required")
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-ada-002"
	}
	return &OpenAIClient{
		sharedKey:      sharedKey,
		embeddingModel: embeddingModel,
		clients:        make(map[string]*openai.Client),
	}, nil
}

func (c *OpenAIClient) clientFor(ctx context.Context) *openai.Client {
	key := c.sharedKey
	if clientID, ok := tenancy.ClientIDFromContext(ctx); ok {
		key = tenants.OpenAIKeyFor(clientID, c.sharedKey)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.clients[key]; ok {
		return cached
	}
	client := openai.NewClient(option.WithAPIKey(key))
	c.clients[key] = &client
	return &client
}

// Complete sends one chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case ChatRoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case ChatRoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case ChatRoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		default:
			return LLMResponse{}, fmt.Errorf("chat: unknown message role %q", msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}

	resp, err := c.clientFor(ctx).Chat.Completions.New(ctx, params)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("chat: openai returned no choices")
	}
	return LLMResponse{Text: resp.Choices[0].Message.Content}, nil
}

// Embed converts text to its embedding vector.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.clientFor(ctx).Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("chat: openai embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("chat: openai returned no embedding")
	}
	return resp.Data[0].Embedding, nil
}
