package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediascribe/internal/config"
	"mediascribe/internal/testsupport"
)

const meetingText = "Guten Morgen zusammen. Heute besprechen wir die Migration der Datenbank, " +
	"die offenen Tickets aus dem letzten Sprint und die Planung für das Release im nächsten Monat."

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "mediascribe.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// withServices points transcription at a fake speech API and the LLM stages
// at a fake chat completion endpoint.
func withServices(t *testing.T, speechCalls, chatCalls *atomic.Int32) testsupport.ConfigOption {
	t.Helper()
	speech := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		speechCalls.Add(1)
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("speech request without file: %v", err)
		}
		writeJSONReply(t, w, map[string]any{"text": meetingText, "language": "german"})
	}))
	t.Cleanup(speech.Close)
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatCalls.Add(1)
		writeJSONReply(t, w, map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "# 📝 Zusammenfassung\n\n- Migration"}}},
		})
	}))
	t.Cleanup(chat.Close)

	return testsupport.WithConfig(func(c *config.Config) {
		c.Transcription.Engine = config.EngineAPI
		c.Transcription.APIBaseURL = speech.URL
		c.Transcription.APIKey = "speech-key"
		c.LLM.APIKey = "chat-key"
		c.LLM.BaseURL = chat.URL
	})
}

func writeJSONReply(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode reply: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
