package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/types"
	"google.golang.org/genai"
)

// Gemini calls the Google Gemini API.
type Gemini struct {
	apiKey string
	model  string
	logger logger.Logger

	mu     sync.Mutex
	client *genai.Client
}

var _ Model = (*Gemini)(nil)

// NewGemini creates a Gemini model. The API client is created on first use so
// that a missing key is reported per request instead of at startup.
func NewGemini(cfg types.ModelConfig, log logger.Logger) *Gemini {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Gemini{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  cfg.Name,
		logger: log,
	}
}

func (g *Gemini) Ready() error {
	if g.apiKey == "" {
		return types.ErrMissingCredential
	}
	return nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(opts.Temperature),
		ResponseMIMEType: opts.ResponseMIMEType,
	}

	g.logger.Debug("calling gemini", map[string]any{
		"model":        g.model,
		"prompt_bytes": len(prompt),
	})

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return resp.Text(), nil
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	if err := g.Ready(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}
