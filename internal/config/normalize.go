package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeExtensions()
	c.normalizeTranscription()
	c.normalizeLLM()
	c.normalizeStages()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		if value, ok := os.LookupEnv("MEDIASCRIBE_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = strings.TrimSpace(value)
		} else {
			c.Paths.DataDir = defaultDataDir
		}
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		key    string
		target *string
		parent string
		name   string
	}{
		{"paths.audio_dir", &c.Paths.AudioDir, c.Paths.DataDir, subdirAudio},
		{"paths.video_dir", &c.Paths.VideoDir, c.Paths.DataDir, subdirVideo},
		{"paths.transcripts_dir", &c.Paths.TranscriptsDir, c.Paths.DataDir, subdirTranscripts},
		{"paths.summaries_dir", &c.Paths.SummariesDir, c.Paths.DataDir, subdirSummaries},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.target) == "" {
			*d.target = filepath.Join(d.parent, d.name)
		}
		if *d.target, err = expandPath(*d.target); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	// todos live under summaries unless overridden
	if strings.TrimSpace(c.Paths.TodosDir) == "" {
		c.Paths.TodosDir = filepath.Join(c.Paths.SummariesDir, subdirTodos)
	}
	if c.Paths.TodosDir, err = expandPath(c.Paths.TodosDir); err != nil {
		return fmt.Errorf("paths.todos_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = filepath.Join(c.Paths.DataDir, defaultLockFileName)
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() error {
	var err error
	if c.Sources.MusicDir, err = expandPath(strings.TrimSpace(c.Sources.MusicDir)); err != nil {
		return fmt.Errorf("sources.music_dir: %w", err)
	}
	if c.Sources.VideosDir, err = expandPath(strings.TrimSpace(c.Sources.VideosDir)); err != nil {
		return fmt.Errorf("sources.videos_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtensions() {
	c.Extensions.Audio = normalizeExtensionList(c.Extensions.Audio, defaultAudioExtensions)
	c.Extensions.Music = normalizeExtensionList(c.Extensions.Music, defaultMusicExtensions)
	c.Extensions.Video = normalizeExtensionList(c.Extensions.Video, defaultVideoExtensions)
	c.Extensions.RecognizedVideo = normalizeExtensionList(c.Extensions.RecognizedVideo, defaultRecognizedVideoExtensions)
}

// normalizeExtensionList lowercases, dot-prefixes, and dedupes extensions,
// falling back to defaults when nothing usable remains.
func normalizeExtensionList(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return cloneStrings(fallback)
	}
	return out
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Engine = strings.ToLower(strings.TrimSpace(c.Transcription.Engine))
	if c.Transcription.Engine == "" {
		c.Transcription.Engine = EngineWhisper
	}
	c.Transcription.Command = strings.TrimSpace(c.Transcription.Command)
	if c.Transcription.Command == "" {
		c.Transcription.Command = defaultWhisperCommand
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Device = strings.ToLower(strings.TrimSpace(c.Transcription.Device))
	if c.Transcription.Device == "" {
		c.Transcription.Device = defaultWhisperDevice
	}
	c.Transcription.APIBaseURL = strings.TrimSpace(c.Transcription.APIBaseURL)
	if c.Transcription.APIBaseURL == "" {
		c.Transcription.APIBaseURL = defaultSpeechAPIBaseURL
	}
	c.Transcription.APIModel = strings.TrimSpace(c.Transcription.APIModel)
	if c.Transcription.APIModel == "" {
		c.Transcription.APIModel = defaultSpeechAPIModel
	}
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Transcription.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)

	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.Model == "" {
			c.LLM.Model = defaultGeminiModel
		}
		if c.LLM.APIKey == "" {
			if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
				c.LLM.APIKey = strings.TrimSpace(value)
			} else if value, ok := os.LookupEnv("GOOGLE_API_KEY"); ok {
				c.LLM.APIKey = strings.TrimSpace(value)
			}
		}
	default:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenAIBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenAIModel
		}
		if c.LLM.APIKey == "" {
			if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
				c.LLM.APIKey = strings.TrimSpace(value)
			}
		}
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeStages() {
	if c.Summaries.MinTranscriptChars < 0 {
		c.Summaries.MinTranscriptChars = 0
	}
	if c.Todos.MinTranscriptChars < 0 {
		c.Todos.MinTranscriptChars = 0
	}
	if c.Watch.SettleSeconds <= 0 {
		c.Watch.SettleSeconds = defaultWatchSettleSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
