package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediascribe/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEDIASCRIBE_DATA_DIR", filepath.Join(tempHome, "work", "data"))

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	dataDir := filepath.Join(tempHome, "work", "data")
	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, dataDir)
	}
	want := map[string]string{
		"audio":       filepath.Join(dataDir, "audio"),
		"video":       filepath.Join(dataDir, "video"),
		"transcripts": filepath.Join(dataDir, "transcripts"),
		"summaries":   filepath.Join(dataDir, "summaries"),
		"todos":       filepath.Join(dataDir, "summaries", "todos"),
	}
	got := map[string]string{
		"audio":       cfg.Paths.AudioDir,
		"video":       cfg.Paths.VideoDir,
		"transcripts": cfg.Paths.TranscriptsDir,
		"summaries":   cfg.Paths.SummariesDir,
		"todos":       cfg.Paths.TodosDir,
	}
	for key, path := range want {
		if got[key] != path {
			t.Fatalf("unexpected %s dir: got %q want %q", key, got[key], path)
		}
	}
	if cfg.Paths.LockPath != filepath.Join(dataDir, ".mediascribe.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.Paths.LockPath)
	}
	if cfg.Sources.MusicDir != filepath.Join(tempHome, "Music") {
		t.Fatalf("unexpected music dir: %q", cfg.Sources.MusicDir)
	}
	if cfg.Sources.VideosDir != filepath.Join(tempHome, "Videos", "OBS") {
		t.Fatalf("unexpected videos dir: %q", cfg.Sources.VideosDir)
	}
	if !cfg.Sources.MusicRecursive || cfg.Sources.VideosRecursive {
		t.Fatalf("unexpected recursion defaults: music=%v videos=%v", cfg.Sources.MusicRecursive, cfg.Sources.VideosRecursive)
	}
	if cfg.Transcription.Engine != config.EngineWhisper || cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected transcription defaults: %+v", cfg.Transcription)
	}
	if cfg.LLM.Provider != config.ProviderOpenAI || cfg.LLM.Model != "gpt-4" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.GetLLM().HasCredential() {
		t.Fatal("expected no llm credential without OPENAI_API_KEY")
	}
	if cfg.Summaries.MaxTokens != 2000 || cfg.Summaries.Temperature != 0.3 {
		t.Fatalf("unexpected summary defaults: %+v", cfg.Summaries)
	}
	if cfg.Todos.MaxTokens != 1500 || cfg.Todos.Temperature != 0.2 {
		t.Fatalf("unexpected todo defaults: %+v", cfg.Todos)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range append(cfg.WorkingDirs(), cfg.Paths.LogDir) {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Sources.MusicDir); !os.IsNotExist(err) {
		t.Fatalf("source directories must not be created, stat err=%v", err)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")

	configPath := filepath.Join(tempHome, "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir":  "~/pipeline",
			"todos_dir": "~/todo-lists",
		},
		"extensions": map[string]any{
			"audio": []string{"WAV", ".Mp3", "wav", ""},
		},
		"llm": map[string]any{
			"api_key": "from-file",
		},
		"summaries": map[string]any{
			"docx": true,
		},
		"logging": map[string]any{
			"format": "JSON",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.AudioDir != filepath.Join(tempHome, "pipeline", "audio") {
		t.Fatalf("unexpected audio dir: %q", cfg.Paths.AudioDir)
	}
	if cfg.Paths.TodosDir != filepath.Join(tempHome, "todo-lists") {
		t.Fatalf("unexpected todos dir: %q", cfg.Paths.TodosDir)
	}
	if got := strings.Join(cfg.Extensions.Audio, ","); got != ".wav,.mp3" {
		t.Fatalf("unexpected audio extensions: got %q want %q", got, ".wav,.mp3")
	}
	if !cfg.GetLLM().HasCredential() || cfg.GetLLM().APIKey != "from-file" {
		t.Fatalf("expected api key from file, got %q", cfg.GetLLM().APIKey)
	}
	if !cfg.Summaries.Docx {
		t.Fatal("expected docx export enabled")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLLMCredentialFallsBackToEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Transcription.APIKey != "sk-env" {
		t.Fatalf("expected speech api key from env, got %q", cfg.Transcription.APIKey)
	}
	if cfg.SummaryLLM().MaxTokens != 2000 || cfg.TodoLLM().MaxTokens != 1500 {
		t.Fatalf("unexpected per-stage token limits: %d %d", cfg.SummaryLLM().MaxTokens, cfg.TodoLLM().MaxTokens)
	}
}

func TestGeminiProviderDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GEMINI_API_KEY", "gm-key")

	path := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(path, []byte("[llm]\nprovider = \"gemini\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected gemini model: %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "gm-key" {
		t.Fatalf("expected gemini key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.CredentialEnvHint() != "GEMINI_API_KEY" {
		t.Fatalf("unexpected credential hint: %q", cfg.CredentialEnvHint())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"engine", "[transcription]\nengine = \"vosk\"\n", "transcription.engine"},
		{"provider", "[llm]\nprovider = \"claude\"\n", "llm.provider"},
		{"tokens", "[summaries]\nmax_tokens = -1\n", "summaries.max_tokens"},
		{"temperature", "[todos]\ntemperature = 3.5\n", "todos.temperature"},
		{"overlap", "[paths]\ndata_dir = \"/tmp/x\"\naudio_dir = \"/tmp/x/same\"\nvideo_dir = \"/tmp/x/same\"\n", "must not point at the same directory"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tempHome := t.TempDir()
			t.Setenv("HOME", tempHome)
			path := filepath.Join(tempHome, "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got %q want substring %q", err.Error(), tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if len(cfg.Extensions.Music) != 8 {
		t.Fatalf("expected 8 music extensions, got %v", cfg.Extensions.Music)
	}
}
