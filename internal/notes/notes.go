package notes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediascribe/internal/artifact"
	"mediascribe/internal/collect"
	"mediascribe/internal/fileutil"
	"mediascribe/internal/logging"
	"mediascribe/internal/services"
	"mediascribe/internal/services/llm"
	"mediascribe/internal/stage"
)

// Pipeline names of the two generation stages.
const (
	SummarizeStage = "summarize"
	TodosStage     = "extract-todos"
)

const defaultMinChars = 100

// Completer is the chat completion surface the generators need. Both the
// OpenAI compatible client and the Gemini client satisfy it.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	Model() string
}

// Options configures one generator.
type Options struct {
	Kind           artifact.Kind
	TranscriptsDir string
	OutputDir      string
	// MinChars is the shortest trimmed transcript worth sending.
	MinChars    int
	MaxTokens   int
	Temperature float64
	FrontMatter bool
	// Docx additionally writes {stem}.docx next to each summary.
	Docx bool
}

// Generator produces one markdown document per transcript via an LLM.
type Generator struct {
	client Completer
	opts   Options
	name   string
	logger *slog.Logger
	now    func() time.Time
}

// NewSummarizer returns the summarize stage generator.
func NewSummarizer(client Completer, opts Options, logger *slog.Logger) *Generator {
	opts.Kind = artifact.KindSummary
	return newGenerator(client, opts, SummarizeStage, logger)
}

// NewTodoExtractor returns the extract-todos stage generator. It never
// writes docx output.
func NewTodoExtractor(client Completer, opts Options, logger *slog.Logger) *Generator {
	opts.Kind = artifact.KindTodo
	opts.Docx = false
	return newGenerator(client, opts, TodosStage, logger)
}

func newGenerator(client Completer, opts Options, name string, logger *slog.Logger) *Generator {
	if opts.MinChars <= 0 {
		opts.MinChars = defaultMinChars
	}
	return &Generator{
		client: client,
		opts:   opts,
		name:   name,
		logger: logging.NewComponentLogger(logger, name),
		now:    time.Now,
	}
}

// Name returns the stage name.
func (g *Generator) Name() string { return g.name }

// Run generates a document for every transcript that has none yet.
func (g *Generator) Run(ctx context.Context) (stage.Stats, error) {
	units, err := g.units()
	if err != nil {
		return stage.Stats{}, err
	}
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return stage.Stats{}, services.Wrap(services.ErrConfiguration, g.name, "create output dir", "Cannot create output directory", err)
	}
	return stage.Process(ctx, g.logger, g.name, units, g.generateOne)
}

// Pending lists transcripts without a generated document.
func (g *Generator) Pending() ([]string, error) {
	units, err := g.units()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, unit := range units {
		if !fileutil.Exists(unit.Outputs[0]) {
			pending = append(pending, unit.Input)
		}
	}
	return pending, nil
}

// HasInputs reports whether any transcript exists.
func (g *Generator) HasInputs() bool {
	return collect.Count(g.opts.TranscriptsDir, transcriptFiles) > 0
}

var transcriptFiles = collect.Options{Extensions: []string{".txt"}}

func (g *Generator) units() ([]stage.Unit, error) {
	files, err := collect.Files(g.opts.TranscriptsDir, transcriptFiles)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, g.name, "scan transcripts", "Cannot list transcripts directory", err)
	}
	units := make([]stage.Unit, 0, len(files))
	for _, file := range files {
		name, err := artifact.Encode(g.derive(artifact.FromTranscriptFile(filepath.Base(file))))
		if err != nil {
			g.logger.Debug("transcript name not usable", logging.String(logging.FieldArtifact, filepath.Base(file)), logging.Error(err))
			continue
		}
		units = append(units, stage.Unit{Input: file, Outputs: []string{filepath.Join(g.opts.OutputDir, name)}})
	}
	return units, nil
}

func (g *Generator) derive(transcript artifact.Artifact) artifact.Artifact {
	if g.opts.Kind == artifact.KindTodo {
		return artifact.TodoFor(transcript)
	}
	return artifact.SummaryFor(transcript)
}

func (g *Generator) generateOne(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if len([]rune(text)) < g.opts.MinChars {
		return nil, stage.Skip("transcript too short (%d chars, need %d)", len([]rune(text)), g.opts.MinChars)
	}

	source := filepath.Base(path)
	transcript := artifact.FromTranscriptFile(source)
	session := SessionFor(transcript, source)

	req := llm.Request{MaxTokens: g.opts.MaxTokens, Temperature: g.opts.Temperature}
	if g.opts.Kind == artifact.KindTodo {
		req.System, req.User = TodoSystemPrompt, TodoPrompt(session, text)
	} else {
		req.System, req.User = SummarySystemPrompt, SummaryPrompt(session, text)
	}

	logging.WithContext(ctx, g.logger).Debug("requesting completion",
		logging.String("model", g.client.Model()),
		logging.String(logging.FieldLanguage, session.PromptLanguage()),
		logging.Bool("thesis", session.Thesis),
		logging.Int("prompt_chars", len(req.User)),
	)
	reply, err := g.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	body := StripFence(reply)
	if body == "" {
		return nil, services.Wrap(services.ErrExternalTool, g.name, "complete", "LLM returned no text", nil)
	}

	doc := body + "\n"
	if g.opts.FrontMatter {
		fm := NewFrontMatter(g.opts.Kind.String(), session, g.client.Model(), g.now())
		if doc, err = fm.Render(doc); err != nil {
			return nil, err
		}
	}

	name := artifact.MustEncode(g.derive(transcript))
	dest := filepath.Join(g.opts.OutputDir, name)
	if err := fileutil.WriteFileAtomic(dest, []byte(doc), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", g.opts.Kind, err)
	}
	outputs := []string{dest}

	if g.opts.Docx {
		docxPath := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".docx"
		if err := WriteDocx(docxPath, DocumentTitle(transcript.Stem, session.PromptLanguage()), body); err != nil {
			logging.WarnWithContext(g.logger, "docx export failed", "docx_failed",
				logging.String(logging.FieldArtifact, source),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the markdown document was written; delete it to retry the export"),
				logging.String(logging.FieldImpact, "no docx copy for this transcript"),
			)
		} else {
			outputs = append(outputs, docxPath)
		}
	}
	return outputs, nil
}

// StripFence removes a ```markdown fence the model wrapped around its whole
// answer and trims surrounding whitespace.
func StripFence(reply string) string {
	text := strings.TrimSpace(reply)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	inner := strings.TrimSuffix(text, "```")
	firstLine := strings.IndexByte(inner, '\n')
	if firstLine < 0 {
		return text
	}
	return strings.TrimSpace(inner[firstLine+1:])
}
