package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mediascribe/internal/logging"
	"mediascribe/internal/services"
)

// Stats summarizes one stage run.
type Stats struct {
	Found     int
	Processed int
	Skipped   int
	Failed    int
	// Outputs lists the files written by this run.
	Outputs []string
	// SkipReason is set when the whole stage had nothing to do, for example
	// because a credential is missing or the stage is disabled.
	SkipReason string
}

// Descriptor is one step of the pipeline.
type Descriptor struct {
	Name      string
	Mandatory bool
	// Applicable reports whether the stage has work to consider. A false
	// result marks the stage skipped without calling Run.
	Applicable func() (bool, string)
	Run        func(ctx context.Context) (Stats, error)
}

// Skipped returns Stats for a stage that chose not to run.
func Skipped(reason string) Stats {
	return Stats{SkipReason: reason}
}

// Unit is one input file together with the output paths whose existence
// marks it as already processed.
type Unit struct {
	Input   string
	Outputs []string
}

// ProcessFunc handles one input and returns the files it wrote.
type ProcessFunc func(ctx context.Context, input string) ([]string, error)

type skipError struct{ reason string }

func (e skipError) Error() string { return e.reason }

// Skip marks an input as intentionally not processed. Process counts it as
// skipped rather than failed.
func Skip(format string, args ...any) error {
	return skipError{reason: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err came from Skip.
func IsSkip(err error) bool {
	var s skipError
	return errors.As(err, &s)
}

// Process applies fn to every unit whose outputs do not exist yet. Failures
// are logged and counted; they never stop the loop. Only cancellation of ctx
// ends the loop early, and its error is returned.
func Process(ctx context.Context, logger *slog.Logger, name string, units []Unit, fn ProcessFunc) (Stats, error) {
	logger = logging.NewComponentLogger(logger, name)
	stats := Stats{Found: len(units)}

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		base := filepath.Base(unit.Input)
		if existing, ok := firstExisting(unit.Outputs); ok {
			stats.Skipped++
			logger.Info("output exists; skipping",
				logging.String(logging.FieldArtifact, base),
				logging.String("output", filepath.Base(existing)),
				logging.String(logging.FieldEventType, "artifact_skipped"),
			)
			continue
		}

		unitCtx := services.WithArtifact(ctx, base)
		started := time.Now()
		outputs, err := fn(unitCtx, unit.Input)
		switch {
		case err == nil:
			stats.Processed++
			stats.Outputs = append(stats.Outputs, outputs...)
			logger.Info("artifact processed",
				logging.String(logging.FieldArtifact, base),
				logging.Duration("duration", time.Since(started).Round(time.Millisecond)),
				logging.Int("outputs", len(outputs)),
				logging.String(logging.FieldEventType, "artifact_processed"),
			)
		case IsSkip(err):
			stats.Skipped++
			logger.Info("artifact skipped",
				logging.String(logging.FieldArtifact, base),
				logging.String("reason", err.Error()),
				logging.String(logging.FieldEventType, "artifact_skipped"),
			)
		case ctx.Err() != nil:
			return stats, ctx.Err()
		default:
			stats.Failed++
			logging.WarnWithContext(logger, "artifact failed; continuing with next input", "artifact_failed",
				logging.String(logging.FieldArtifact, base),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "no output written for this input"),
			)
		}
	}
	return stats, nil
}

func firstExisting(paths []string) (string, bool) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
