package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/logging"
	"mediascribe/internal/notes"
	"mediascribe/internal/services"
	"mediascribe/internal/stage"
	"mediascribe/internal/transcribe"
)

// Status is the outcome of one stage within a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusNotRun    Status = "not-run"
)

// Classification summarizes a whole run.
type Classification string

const (
	ClassCompleted   Classification = "COMPLETED SUCCESSFULLY"
	ClassMostly      Classification = "MOSTLY COMPLETED"
	ClassPartial     Classification = "PARTIALLY COMPLETED"
	ClassFailed      Classification = "FAILED"
	ClassNothingToDo Classification = "NOTHING TO DO"
)

// StageResult records what one stage did.
type StageResult struct {
	Name      string
	Mandatory bool
	Status    Status
	Stats     stage.Stats
	Err       error
	Duration  time.Duration
}

// Succeeded reports whether the stage counts as successful for
// classification. A stage that had nothing to do succeeded.
func (r StageResult) Succeeded() bool {
	return r.Status == StatusCompleted || r.Status == StatusSkipped
}

// Report is the structured result of a driver run.
type Report struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Inventory      Inventory
	Stages         []StageResult
	Classification Classification
	Counts         Counts
	Hints          []string
}

// Stage returns the result recorded for name.
func (r Report) Stage(name string) (StageResult, bool) {
	for _, result := range r.Stages {
		if result.Name == name {
			return result, true
		}
	}
	return StageResult{}, false
}

// ExitCode maps the classification to the process exit status.
func (r Report) ExitCode() int {
	if r.Classification == ClassFailed {
		return 1
	}
	return 0
}

// Driver runs stage descriptors strictly in order.
type Driver struct {
	stages        []stage.Descriptor
	logger        *slog.Logger
	inventory     func() Inventory
	counts        func() Counts
	credentialEnv string
	now           func() time.Time
}

// Option customizes a Driver.
type Option func(*Driver)

// WithInventory sets the prerequisite check run before any stage. An empty
// inventory ends the run with NOTHING TO DO.
func WithInventory(fn func() Inventory) Option {
	return func(d *Driver) { d.inventory = fn }
}

// WithCounts sets the artifact counter used for the final report.
func WithCounts(fn func() Counts) Option {
	return func(d *Driver) { d.counts = fn }
}

// WithCredentialHint names the environment variable suggested when LLM
// outputs are missing.
func WithCredentialHint(env string) Option {
	return func(d *Driver) { d.credentialEnv = env }
}

// NewDriver constructs a Driver.
func NewDriver(stages []stage.Descriptor, logger *slog.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Driver{
		stages:        stages,
		logger:        logging.NewComponentLogger(logger, "pipeline"),
		credentialEnv: "OPENAI_API_KEY",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes the stages. A failed mandatory stage marks every later stage
// not-run; a failed optional stage is logged as a warning and the run goes
// on. The returned error is non-nil only when ctx was cancelled.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	runID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRequestID(ctx, runID)
	}
	report := Report{RunID: runID, StartedAt: d.now()}
	logger := logging.WithContext(ctx, d.logger)

	if d.inventory != nil {
		report.Inventory = d.inventory()
		logger.Info("prerequisites checked",
			logging.Int("audio", report.Inventory.Audio),
			logging.Int("video", report.Inventory.Video),
			logging.Int("music_source", report.Inventory.MusicSource),
			logging.Int("video_source", report.Inventory.VideoSource),
		)
		if report.Inventory.Empty() {
			report.Classification = ClassNothingToDo
			report.Hints = []string{"Add files to data/audio or data/video and try again."}
			for _, desc := range d.stages {
				report.Stages = append(report.Stages, StageResult{Name: desc.Name, Mandatory: desc.Mandatory, Status: StatusNotRun})
			}
			report.Duration = d.now().Sub(report.StartedAt)
			logger.Info("no input files found; nothing to do", logging.String(logging.FieldEventType, "pipeline_nothing_to_do"))
			return report, nil
		}
	}

	halted := false
	for i, desc := range d.stages {
		result := StageResult{Name: desc.Name, Mandatory: desc.Mandatory}
		if halted {
			result.Status = StatusNotRun
			report.Stages = append(report.Stages, result)
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Stages = append(report.Stages, notRun(d.stages[i:])...)
			return d.finish(ctx, report), err
		}

		result = d.runStage(ctx, desc)
		report.Stages = append(report.Stages, result)
		if result.Err != nil && ctx.Err() != nil {
			report.Stages = append(report.Stages, notRun(d.stages[i+1:])...)
			return d.finish(ctx, report), ctx.Err()
		}
		if result.Status == StatusFailed && desc.Mandatory {
			halted = true
		}
	}
	return d.finish(ctx, report), nil
}

func (d *Driver) runStage(ctx context.Context, desc stage.Descriptor) StageResult {
	result := StageResult{Name: desc.Name, Mandatory: desc.Mandatory}
	stageCtx := services.WithStage(ctx, desc.Name)
	logger := logging.WithContext(stageCtx, d.logger)

	if desc.Applicable != nil {
		if ok, reason := desc.Applicable(); !ok {
			result.Status = StatusSkipped
			result.Stats = stage.Skipped(reason)
			logger.Info("stage skipped",
				logging.String("reason", reason),
				logging.String(logging.FieldEventType, "stage_skipped"),
			)
			return result
		}
	}

	started := d.now()
	logger.Info("stage started",
		logging.Bool("mandatory", desc.Mandatory),
		logging.String(logging.FieldEventType, "stage_start"),
	)
	stats, err := desc.Run(stageCtx)
	result.Stats = stats
	result.Duration = d.now().Sub(started)

	switch {
	case err != nil:
		result.Status = StatusFailed
		result.Err = err
		attrs := []logging.Attr{
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		}
		if ctx.Err() != nil {
			logger.Info("stage interrupted", logging.String(logging.FieldEventType, "stage_interrupted"))
		} else if desc.Mandatory {
			attrs = append(attrs, logging.String(logging.FieldImpact, "pipeline halted; later stages do not run"))
			logging.ErrorWithContext(logger, "mandatory stage failed", "stage_failed", attrs...)
		} else {
			attrs = append(attrs, logging.String(logging.FieldImpact, "optional stage output missing; pipeline continues"))
			logging.WarnWithContext(logger, "optional stage failed", "stage_failed", attrs...)
		}
	case stats.SkipReason != "":
		result.Status = StatusSkipped
		logger.Info("stage skipped",
			logging.String("reason", stats.SkipReason),
			logging.String(logging.FieldEventType, "stage_skipped"),
		)
	default:
		result.Status = StatusCompleted
		logger.Info("stage completed",
			logging.Int("found", stats.Found),
			logging.Int("processed", stats.Processed),
			logging.Int("skipped", stats.Skipped),
			logging.Int("failed", stats.Failed),
			logging.Duration("duration", result.Duration.Round(time.Millisecond)),
			logging.String(logging.FieldEventType, "stage_complete"),
		)
		if stats.Failed > 0 {
			logging.WarnWithContext(logger, "stage finished with failed inputs", "stage_partial",
				logging.Int("failed", stats.Failed),
				logging.String(logging.FieldImpact, fmt.Sprintf("%d input(s) produced no output", stats.Failed)),
			)
		}
	}
	return result
}

func (d *Driver) finish(ctx context.Context, report Report) Report {
	report.Classification = Classify(report.Stages)
	if d.counts != nil {
		report.Counts = d.counts()
	}
	report.Hints = NextSteps(report, d.credentialEnv)
	report.Duration = d.now().Sub(report.StartedAt)

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("pipeline finished",
		logging.String("classification", string(report.Classification)),
		logging.Int("transcripts", report.Counts.Transcripts),
		logging.Int("summaries", report.Counts.Summaries),
		logging.Int("todos", report.Counts.Todos),
		logging.Duration("duration", report.Duration.Round(time.Millisecond)),
		logging.String(logging.FieldEventType, "pipeline_complete"),
	)
	return report
}

func notRun(descs []stage.Descriptor) []StageResult {
	out := make([]StageResult, 0, len(descs))
	for _, desc := range descs {
		out = append(out, StageResult{Name: desc.Name, Mandatory: desc.Mandatory, Status: StatusNotRun})
	}
	return out
}

// Classify derives the run classification from the transcribe, summarize
// and extract-todos results.
func Classify(results []StageResult) Classification {
	succeeded := func(name string) bool {
		for _, r := range results {
			if r.Name == name {
				return r.Succeeded()
			}
		}
		return false
	}
	switch {
	case !succeeded(transcribe.StageName):
		return ClassFailed
	case succeeded(notes.SummarizeStage) && succeeded(notes.TodosStage):
		return ClassCompleted
	case succeeded(notes.SummarizeStage):
		return ClassMostly
	default:
		return ClassPartial
	}
}

// NextSteps suggests follow-up actions for a finished run.
func NextSteps(report Report, credentialEnv string) []string {
	var hints []string
	if report.Classification == ClassFailed {
		if result, ok := report.Stage(transcribe.StageName); ok && result.Err != nil {
			hints = append(hints, "Transcription failed: "+services.Hint(result.Err)+".")
		}
		return append(hints, "Fix the problem above and rerun mediascribe run.")
	}
	c := report.Counts
	if (c.Summaries == 0 || c.Todos == 0) && c.Transcripts > 0 {
		hints = append(hints,
			fmt.Sprintf("Set %s to enable automatic summaries and TODO lists.", credentialEnv),
			"Or run the stages on their own: mediascribe summarize, mediascribe todos.",
		)
	}
	return append(hints, "Check the generated files for accuracy.")
}
