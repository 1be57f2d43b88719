// Package speechapi transcribes audio through an OpenAI compatible
// /audio/transcriptions endpoint.
package speechapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	langpkg "mediascribe/internal/language"
	"mediascribe/internal/services"
	"mediascribe/internal/services/speech"
)

const (
	defaultURL     = "https://api.openai.com/v1/audio/transcriptions"
	defaultModel   = "whisper-1"
	defaultTimeout = time.Hour
	errorBodyLimit = 2048
)

// Config captures the endpoint settings.
type Config struct {
	URL            string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Client uploads audio files for transcription.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

// Name identifies the engine in logs.
func (c *Client) Name() string {
	return "api/" + c.cfg.Model
}

// Check verifies an API key is configured.
func (c *Client) Check() error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "transcribe", "speech api", "API key required; set OPENAI_API_KEY or transcription.api_key", nil)
	}
	return nil
}

// Transcribe uploads audioPath and returns the text with the language
// normalized to ISO 639-1. An empty language requests auto detection.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) (speech.Result, error) {
	if c.cfg.APIKey == "" {
		return speech.Result{}, services.Wrap(services.ErrConfiguration, "transcribe", "speech api", "API key required", nil)
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return speech.Result{}, fmt.Errorf("speech api: open audio: %w", err)
	}
	defer file.Close()

	forced := langpkg.ToISO2(language)
	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		writer.CloseWithError(writeForm(form, file, filepath.Base(audioPath), c.cfg.Model, forced))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, body)
	if err != nil {
		_ = body.Close()
		return speech.Result{}, fmt.Errorf("speech api: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		_ = body.Close()
		return speech.Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "speech api", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		marker := services.ErrExternalTool
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			marker = services.ErrConfiguration
		}
		return speech.Result{}, services.Wrap(marker, "transcribe", "speech api",
			fmt.Sprintf("status %d", resp.StatusCode), errors.New(strings.TrimSpace(string(respBody))))
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return speech.Result{}, fmt.Errorf("speech api: decode response: %w", err)
	}

	// verbose_json reports full names ("german"); forced calls may omit it.
	lang := langpkg.ToISO2(result.Language)
	if forced != "" {
		lang = forced
	}
	return speech.Result{Text: strings.TrimSpace(result.Text), Language: lang}, nil
}

func writeForm(form *multipart.Writer, audio io.Reader, filename, model, language string) error {
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return err
	}
	fields := [][2]string{
		{"model", model},
		{"response_format", "verbose_json"},
	}
	if language != "" {
		fields = append(fields, [2]string{"language", language})
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}
	return form.Close()
}
