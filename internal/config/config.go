package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the working directory tree plus log and lock locations.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	AudioDir       string `toml:"audio_dir"`
	VideoDir       string `toml:"video_dir"`
	TranscriptsDir string `toml:"transcripts_dir"`
	SummariesDir   string `toml:"summaries_dir"`
	TodosDir       string `toml:"todos_dir"`
	LogDir         string `toml:"log_dir"`
	LockPath       string `toml:"lock_path"`
}

// Sources contains the external directories the ingest stages copy from.
type Sources struct {
	MusicDir        string `toml:"music_dir"`
	MusicRecursive  bool   `toml:"music_recursive"`
	CopyMusic       bool   `toml:"copy_music"`
	VideosDir       string `toml:"videos_dir"`
	VideosRecursive bool   `toml:"videos_recursive"`
	CopyVideos      bool   `toml:"copy_videos"`
}

// Extensions lists the file extensions each stage accepts.
type Extensions struct {
	Audio []string `toml:"audio"`
	// Music extends Audio for the music ingest (ogg, wma).
	Music []string `toml:"music"`
	Video []string `toml:"video"`
	// RecognizedVideo are container formats reported by status but never transformed.
	RecognizedVideo []string `toml:"recognized_video"`
}

// Transcription contains speech-to-text engine settings.
type Transcription struct {
	Engine         string `toml:"engine"`
	Command        string `toml:"command"`
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	APIBaseURL     string `toml:"api_base_url"`
	APIKey         string `toml:"api_key"`
	APIModel       string `toml:"api_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains shared LLM connection settings used by the summary and TODO stages.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Summaries contains configuration for the summarize stage.
type Summaries struct {
	Enabled            bool    `toml:"enabled"`
	MaxTokens          int     `toml:"max_tokens"`
	Temperature        float64 `toml:"temperature"`
	MinTranscriptChars int     `toml:"min_transcript_chars"`
	FrontMatter        bool    `toml:"front_matter"`
	Docx               bool    `toml:"docx"`
}

// Todos contains configuration for the extract-todos stage.
type Todos struct {
	Enabled            bool    `toml:"enabled"`
	MaxTokens          int     `toml:"max_tokens"`
	Temperature        float64 `toml:"temperature"`
	MinTranscriptChars int     `toml:"min_transcript_chars"`
	FrontMatter        bool    `toml:"front_matter"`
}

// Watch contains configuration for the directory watcher.
type Watch struct {
	SettleSeconds  int  `toml:"settle_seconds"`
	IncludeSources bool `toml:"include_sources"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for mediascribe.
//
// Configuration sections by subsystem:
//   - Paths: working data tree, logs, and the run lock
//   - Sources: external music and screen-capture directories
//   - Extensions: accepted file types per stage
//   - Transcription: local whisper CLI or remote speech API
//   - LLM: shared chat completion provider for summaries and TODOs
//   - Summaries / Todos: per-stage generation settings
//   - Watch: directory watcher timing
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sources       Sources       `toml:"sources"`
	Extensions    Extensions    `toml:"extensions"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Summaries     Summaries     `toml:"summaries"`
	Todos         Todos         `toml:"todos"`
	Watch         Watch         `toml:"watch"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Normalize applies defaults, environment fallbacks, and path expansion.
// Load calls it; code that assembles a Config by hand must call it too.
func (c *Config) Normalize() error {
	return c.normalize()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediascribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working data tree and the log directory.
// Source directories are never created; they belong to other applications.
func (c *Config) EnsureDirectories() error {
	for _, dir := range c.WorkingDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Paths.LogDir, err)
		}
	}
	return nil
}

// WorkingDirs returns the data directories in pipeline order.
func (c *Config) WorkingDirs() []string {
	return []string{
		c.Paths.AudioDir,
		c.Paths.VideoDir,
		c.Paths.TranscriptsDir,
		c.Paths.SummariesDir,
		c.Paths.TodosDir,
	}
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved LLM settings for one stage.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	MaxTokens      int
	Temperature    float64
}

// HasCredential reports whether an API key is available.
func (l LLMConfig) HasCredential() bool {
	return strings.TrimSpace(l.APIKey) != ""
}

// GetLLM returns the shared LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       strings.TrimSpace(c.LLM.Provider),
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// SummaryLLM returns the LLM settings for the summarize stage.
func (c *Config) SummaryLLM() LLMConfig {
	cfg := c.GetLLM()
	cfg.MaxTokens = c.Summaries.MaxTokens
	cfg.Temperature = c.Summaries.Temperature
	return cfg
}

// TodoLLM returns the LLM settings for the extract-todos stage.
func (c *Config) TodoLLM() LLMConfig {
	cfg := c.GetLLM()
	cfg.MaxTokens = c.Todos.MaxTokens
	cfg.Temperature = c.Todos.Temperature
	return cfg
}

// CredentialEnvHint names the environment variable that supplies the LLM key
// for the configured provider.
func (c *Config) CredentialEnvHint() string {
	if c.LLM.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
