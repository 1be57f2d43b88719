package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/config"
	"mediascribe/internal/extract"
	"mediascribe/internal/ingest"
	"mediascribe/internal/logging"
	"mediascribe/internal/notes"
	"mediascribe/internal/services"
	"mediascribe/internal/services/gemini"
	"mediascribe/internal/services/llm"
	"mediascribe/internal/services/speech"
	"mediascribe/internal/services/speechapi"
	"mediascribe/internal/services/whisper"
	"mediascribe/internal/stage"
	"mediascribe/internal/transcribe"
)

// Names of the ingest stages.
const (
	CopyVideosStage = "copy-videos"
	CopyMusicStage  = "copy-music"
)

// StageNames lists every stage in execution order.
var StageNames = []string{
	CopyVideosStage,
	CopyMusicStage,
	extract.StageName,
	transcribe.StageName,
	notes.SummarizeStage,
	notes.TodosStage,
}

// LLMClient is a completion client that can also verify its credentials.
type LLMClient interface {
	notes.Completer
	HealthCheck(ctx context.Context) error
}

// Components holds the concrete stage implementations for one config.
type Components struct {
	cfg    *config.Config
	logger *slog.Logger

	Copier      *ingest.Copier
	Extractor   *extract.Extractor
	Engine      speech.Engine
	Transcriber *transcribe.Transcriber
	// LLM, Summarizer and Todos are nil when no credential is configured.
	LLM        LLMClient
	Summarizer *notes.Generator
	Todos      *notes.Generator
}

// NewComponents wires every stage from cfg. It performs no network or
// process calls.
func NewComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Components{
		cfg:       cfg,
		logger:    logger,
		Copier:    ingest.NewCopier(logger),
		Extractor: extract.NewExtractor(cfg.FFmpegBinary(), cfg.Paths.VideoDir, cfg.Paths.AudioDir, cfg.Extensions.Video, logger),
		Engine:    NewSpeechEngine(cfg),
	}
	c.Transcriber = transcribe.New(c.Engine, cfg.Paths.AudioDir, cfg.Paths.TranscriptsDir, cfg.Extensions.Audio, logger)

	if cfg.GetLLM().HasCredential() {
		client, err := NewLLMClient(ctx, cfg.GetLLM())
		if err != nil {
			return nil, err
		}
		c.UseLLM(client)
	}
	return c, nil
}

// UseEngine replaces the transcription backend.
func (c *Components) UseEngine(engine speech.Engine) {
	c.Engine = engine
	c.Transcriber = transcribe.New(engine, c.cfg.Paths.AudioDir, c.cfg.Paths.TranscriptsDir, c.cfg.Extensions.Audio, c.logger)
}

// UseLLM installs client as the completion backend of both LLM stages.
func (c *Components) UseLLM(client LLMClient) {
	c.LLM = client
	c.Summarizer = notes.NewSummarizer(client, c.summaryOptions(), c.logger)
	c.Todos = notes.NewTodoExtractor(client, c.todoOptions(), c.logger)
}

func (c *Components) summaryOptions() notes.Options {
	summary := c.cfg.SummaryLLM()
	return notes.Options{
		TranscriptsDir: c.cfg.Paths.TranscriptsDir,
		OutputDir:      c.cfg.Paths.SummariesDir,
		MinChars:       c.cfg.Summaries.MinTranscriptChars,
		MaxTokens:      summary.MaxTokens,
		Temperature:    summary.Temperature,
		FrontMatter:    c.cfg.Summaries.FrontMatter,
		Docx:           c.cfg.Summaries.Docx,
	}
}

func (c *Components) todoOptions() notes.Options {
	todo := c.cfg.TodoLLM()
	return notes.Options{
		TranscriptsDir: c.cfg.Paths.TranscriptsDir,
		OutputDir:      c.cfg.Paths.TodosDir,
		MinChars:       c.cfg.Todos.MinTranscriptChars,
		MaxTokens:      todo.MaxTokens,
		Temperature:    todo.Temperature,
		FrontMatter:    c.cfg.Todos.FrontMatter,
	}
}

// NewSpeechEngine returns the transcription backend selected by cfg.
func NewSpeechEngine(cfg *config.Config) speech.Engine {
	t := cfg.Transcription
	if t.Engine == config.EngineAPI {
		return speechapi.NewClient(speechapi.Config{
			URL:            t.APIBaseURL,
			APIKey:         t.APIKey,
			Model:          t.APIModel,
			TimeoutSeconds: t.TimeoutSeconds,
		})
	}
	return whisper.NewService(whisper.Config{
		Command: t.Command,
		Model:   t.Model,
		Device:  t.Device,
		Timeout: time.Duration(t.TimeoutSeconds) * time.Second,
	})
}

// NewLLMClient returns the completion client for the configured provider.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI, "":
		return llm.NewClient(llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// Descriptors returns the six stages in execution order.
func (c *Components) Descriptors() []stage.Descriptor {
	return []stage.Descriptor{
		c.copyStage(CopyVideosStage, c.cfg.Sources.CopyVideos, ingest.Source{
			Name:       CopyVideosStage,
			Dir:        c.cfg.Sources.VideosDir,
			Recursive:  c.cfg.Sources.VideosRecursive,
			Extensions: c.cfg.Extensions.Video,
			DestDir:    c.cfg.Paths.VideoDir,
		}),
		c.copyStage(CopyMusicStage, c.cfg.Sources.CopyMusic, ingest.Source{
			Name:       CopyMusicStage,
			Dir:        c.cfg.Sources.MusicDir,
			Recursive:  c.cfg.Sources.MusicRecursive,
			Extensions: c.cfg.Extensions.Music,
			DestDir:    c.cfg.Paths.AudioDir,
		}),
		{
			Name: extract.StageName,
			Applicable: func() (bool, string) {
				if !c.Extractor.HasInputs() {
					return false, "no video files"
				}
				return true, ""
			},
			Run: c.Extractor.Run,
		},
		{
			Name:      transcribe.StageName,
			Mandatory: true,
			Run:       c.Transcriber.Run,
		},
		c.llmStage(notes.SummarizeStage, c.cfg.Summaries.Enabled, func() *notes.Generator { return c.Summarizer }),
		c.llmStage(notes.TodosStage, c.cfg.Todos.Enabled, func() *notes.Generator { return c.Todos }),
	}
}

// Descriptor returns the stage called name.
func (c *Components) Descriptor(name string) (stage.Descriptor, bool) {
	for _, desc := range c.Descriptors() {
		if desc.Name == name {
			return desc, true
		}
	}
	return stage.Descriptor{}, false
}

func (c *Components) copyStage(name string, enabled bool, src ingest.Source) stage.Descriptor {
	return stage.Descriptor{
		Name: name,
		Applicable: func() (bool, string) {
			if !enabled {
				return false, "disabled in config"
			}
			return true, ""
		},
		Run: func(ctx context.Context) (stage.Stats, error) {
			return c.Copier.Run(ctx, src)
		},
	}
}

func (c *Components) llmStage(name string, enabled bool, gen func() *notes.Generator) stage.Descriptor {
	return stage.Descriptor{
		Name: name,
		Applicable: func() (bool, string) {
			if !enabled {
				return false, "disabled in config"
			}
			return true, ""
		},
		Run: func(ctx context.Context) (stage.Stats, error) {
			g := gen()
			if g == nil {
				env := c.cfg.CredentialEnvHint()
				logging.NewComponentLogger(c.logger, name).Info("no LLM credential; skipping",
					logging.String("hint", fmt.Sprintf("export %s='your-api-key-here'", env)),
					logging.String(logging.FieldEventType, "credential_missing"),
				)
				return stage.Skipped("no LLM credential; set " + env), nil
			}
			return g.Run(ctx)
		},
	}
}

// NewDriver builds the full pipeline driver for cfg.
func (c *Components) NewDriver() *Driver {
	return NewDriver(c.Descriptors(), c.logger,
		WithInventory(func() Inventory { return TakeInventory(c.cfg) }),
		WithCounts(func() Counts { return CountArtifacts(c.cfg) }),
		WithCredentialHint(c.cfg.CredentialEnvHint()),
	)
}

// RunStage runs the stage called name on its own, outside the full
// pipeline. The returned error is the stage failure, if any.
func (c *Components) RunStage(ctx context.Context, name string) (StageResult, error) {
	desc, ok := c.Descriptor(name)
	if !ok {
		return StageResult{}, fmt.Errorf("unknown stage %q", name)
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	result := NewDriver(nil, c.logger).runStage(ctx, desc)
	return result, result.Err
}

// Backlog counts the inputs each transform stage would process next.
type Backlog struct {
	Extract    int
	Transcribe int
	Summarize  int
	Todos      int
}

// Backlog inspects the data tree without calling any external service.
func (c *Components) Backlog() (Backlog, error) {
	var b Backlog
	pending := []struct {
		dst *int
		fn  func() ([]string, error)
	}{
		{&b.Extract, c.Extractor.Pending},
		{&b.Transcribe, c.Transcriber.Pending},
		{&b.Summarize, notes.NewSummarizer(nil, c.summaryOptions(), c.logger).Pending},
		{&b.Todos, notes.NewTodoExtractor(nil, c.todoOptions(), c.logger).Pending},
	}
	for _, p := range pending {
		files, err := p.fn()
		if err != nil {
			return Backlog{}, err
		}
		*p.dst = len(files)
	}
	return b, nil
}
