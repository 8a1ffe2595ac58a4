package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/job-matcher/internal/utils"
)

const (
	DefaultGeminiModel = "text-embedding-004"
	// Gemini rejects batch embedding requests above this size.
	geminiBatchSize = 100
	taskType        = "SEMANTIC_SIMILARITY"
	retryDelay      = time.Second
)

var wait = utils.WaitFor

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Gemini embeds texts with the Gemini API.
type Gemini struct {
	models     contentEmbedder
	modelName  string
	maxRetries int
	batchSize  int
	logger     *zap.Logger
}

// NewGemini creates an embedder configured for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGemini(client.Models, model, maxRetries, logger), nil
}

func newGemini(models contentEmbedder, model string, maxRetries int, logger *zap.Logger) *Gemini {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultGeminiModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gemini{
		models:     models,
		modelName:  model,
		maxRetries: maxRetries,
		batchSize:  geminiBatchSize,
		logger:     logger,
	}
}

// Embed returns one vector per text. Texts are sent in batches.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := g.embedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (g *Gemini) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func (g *Gemini) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay * time.Duration(1<<(attempt-1))
			g.logger.Debug("retrying embedding request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := wait(ctx, delay); err != nil {
				return nil, err
			}
		}

		vectors, err := g.embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}

		lastErr = err
		if !isTemporary(err) {
			break
		}
	}

	return nil, lastErr
}

func (g *Gemini) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	resp, err := g.models.EmbedContent(ctx, g.modelName, contents, &genai.EmbedContentConfig{TaskType: taskType})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", got, len(texts))
	}

	vectors := make([][]float32, 0, len(texts))
	for _, embedding := range resp.Embeddings {
		if embedding == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, embedding.Values)
	}

	return vectors, nil
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Code >= http.StatusInternalServerError
	}

	return false
}
