// Package gemini implements the chat completion contract on top of the
// Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"mediascribe/internal/services"
	"mediascribe/internal/services/llm"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 120 * time.Second
)

// Config captures the Gemini connection settings.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client sends prompts to Gemini.
type Client struct {
	model   string
	timeout time.Duration
	client  *genai.Client
}

// NewClient constructs a Gemini client. It does not contact the API.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "new client", "API key required", nil)
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{model: model, timeout: timeout, client: client}, nil
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one generate-content request and returns the reply text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	user := strings.TrimSpace(req.User)
	if user == "" {
		return "", errors.New("gemini complete: user prompt required")
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if system := strings.TrimSpace(req.System); system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return c.generate(ctx, user, genCfg)
}

// HealthCheck verifies the key and model with a minimal request.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.generate(ctx, "Reply with the single word OK.", &genai.GenerateContentConfig{MaxOutputTokens: 5})
	return err
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		if code := apiErrorCode(err); code == http.StatusUnauthorized || code == http.StatusForbidden {
			return "", services.Wrap(services.ErrConfiguration, "gemini", "generate", "API key rejected", err)
		}
		return "", services.Wrap(services.ErrExternalTool, "gemini", "generate", "", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf("gemini: empty content (finish_reason=%q)", result.Candidates[0].FinishReason)
	}
	return out, nil
}

func apiErrorCode(err error) int {
	var value genai.APIError
	if errors.As(err, &value) {
		return value.Code
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code
	}
	return 0
}
