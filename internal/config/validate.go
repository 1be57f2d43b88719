package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateGeneration("summaries", c.Summaries.MaxTokens, c.Summaries.Temperature); err != nil {
		return err
	}
	if err := c.validateGeneration("todos", c.Todos.MaxTokens, c.Todos.Temperature); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	seen := make(map[string]string)
	named := []struct {
		key  string
		path string
	}{
		{"paths.audio_dir", c.Paths.AudioDir},
		{"paths.video_dir", c.Paths.VideoDir},
		{"paths.transcripts_dir", c.Paths.TranscriptsDir},
		{"paths.summaries_dir", c.Paths.SummariesDir},
		{"paths.todos_dir", c.Paths.TodosDir},
	}
	for _, n := range named {
		if other, ok := seen[n.path]; ok {
			return fmt.Errorf("%s and %s must not point at the same directory (%s)", other, n.key, n.path)
		}
		seen[n.path] = n.key
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Engine {
	case EngineWhisper:
		if c.Transcription.Command == "" {
			return errors.New("transcription.command must be set when transcription.engine is whisper")
		}
	case EngineAPI:
		if c.Transcription.APIBaseURL == "" {
			return errors.New("transcription.api_base_url must be set when transcription.engine is api")
		}
	default:
		return fmt.Errorf("transcription.engine: unsupported value %q (want %q or %q)", c.Transcription.Engine, EngineWhisper, EngineAPI)
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (want %q or %q)", c.LLM.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validateGeneration(section string, maxTokens int, temperature float64) error {
	if maxTokens <= 0 {
		return fmt.Errorf("%s.max_tokens must be positive", section)
	}
	if temperature < 0 || temperature > 2 {
		return fmt.Errorf("%s.temperature must be between 0 and 2", section)
	}
	return nil
}
