package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/brokera/leadmatch/internal/core/domain"
)

// Client is the hosted-API alternative to the local ollama provider. Both
// satisfy the same embedder and judge ports; which one runs is a config
// switch.
type Client struct {
	api        *openai.Client
	chatModel  string
	embedModel string
}

func New(apiKey, baseURL, chatModel, embedModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		api:        openai.NewClientWithConfig(cfg),
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.client.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		out[i] = item.Embedding
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Judge grades listings through the chat API. Calls are rate limited as a
// unit; a search reranking a full candidate page fans out one call per
// candidate, and the hosted API bills per token.
type Judge struct {
	client  *Client
	limiter *rate.Limiter
}

func NewJudge(client *Client, requestsPerSecond float64, burst int) *Judge {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &Judge{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (j *Judge) Judge(
	ctx context.Context,
	query string,
	listing domain.Listing,
	req domain.Requirements,
) (float64, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("judge rate limit: %w", err)
	}

	resp, err := j.client.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: j.client.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildJudgeUserPrompt(query, listing, req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("openai judge: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("openai judge: empty choices")
	}

	var verdict struct {
		Relevance float64 `json:"relevance"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &verdict); err != nil {
		return 0, fmt.Errorf("parse judge json: %w", err)
	}
	return gradeToAdjustment(verdict.Relevance), nil
}

func gradeToAdjustment(grade float64) float64 {
	if grade < 0 {
		grade = 0
	}
	if grade > 10 {
		grade = 10
	}
	return (grade - 5.0) / 50.0
}
