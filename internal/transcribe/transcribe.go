package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediascribe/internal/artifact"
	"mediascribe/internal/collect"
	"mediascribe/internal/fileutil"
	"mediascribe/internal/language"
	"mediascribe/internal/logging"
	"mediascribe/internal/services"
	"mediascribe/internal/services/speech"
	"mediascribe/internal/stage"
)

// StageName is the pipeline name of the transcription stage.
const StageName = "transcribe"

// ErrNoUsableTranscript reports that neither detection nor any forced
// language produced a valid transcript.
var ErrNoUsableTranscript = errors.New("no usable transcript in any supported language")

// Transcriber turns audio files into language-tagged transcripts.
type Transcriber struct {
	engine         speech.Engine
	audioDir       string
	transcriptsDir string
	extensions     []string
	logger         *slog.Logger
}

// New constructs a Transcriber.
func New(engine speech.Engine, audioDir, transcriptsDir string, extensions []string, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		engine:         engine,
		audioDir:       audioDir,
		transcriptsDir: transcriptsDir,
		extensions:     extensions,
		logger:         logging.NewComponentLogger(logger, StageName),
	}
}

// Run transcribes every audio file that has no transcript yet. The stage
// fails only when the input directory cannot be read or the engine is
// unusable while work is pending.
func (t *Transcriber) Run(ctx context.Context) (stage.Stats, error) {
	units, err := t.units()
	if err != nil {
		return stage.Stats{}, err
	}
	if err := os.MkdirAll(t.transcriptsDir, 0o755); err != nil {
		return stage.Stats{}, services.Wrap(services.ErrConfiguration, StageName, "create transcripts dir", "Cannot create transcripts directory", err)
	}
	if countPending(units) > 0 {
		if checker, ok := t.engine.(speech.Checker); ok {
			if err := checker.Check(); err != nil {
				return stage.Stats{Found: len(units)}, err
			}
		}
	}
	return stage.Process(ctx, t.logger, StageName, units, t.transcribeOne)
}

// Pending lists audio files without a transcript.
func (t *Transcriber) Pending() ([]string, error) {
	units, err := t.units()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, unit := range units {
		if !anyExists(unit.Outputs) {
			pending = append(pending, unit.Input)
		}
	}
	return pending, nil
}

func (t *Transcriber) units() ([]stage.Unit, error) {
	files, err := collect.Files(t.audioDir, collect.Options{Extensions: t.extensions})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageName, "scan audio", "Cannot list audio directory", err)
	}
	units := make([]stage.Unit, 0, len(files))
	for _, file := range files {
		candidates := artifact.TranscriptCandidates(collect.Stem(file))
		outputs := make([]string, 0, len(candidates))
		for _, name := range candidates {
			outputs = append(outputs, filepath.Join(t.transcriptsDir, name))
		}
		units = append(units, stage.Unit{Input: file, Outputs: outputs})
	}
	return units, nil
}

func (t *Transcriber) transcribeOne(ctx context.Context, audioPath string) ([]string, error) {
	result, err := t.TranscribeFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	name, err := artifact.Encode(artifact.Transcript(collect.Stem(audioPath), result.Language))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageName, "name transcript", "", err)
	}
	dest := filepath.Join(t.transcriptsDir, name)
	if err := fileutil.WriteFileAtomic(dest, []byte(strings.TrimSpace(result.Text)+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}
	t.logger.Info("transcript written",
		logging.String(logging.FieldArtifact, filepath.Base(audioPath)),
		logging.String(logging.FieldLanguage, result.Language),
		logging.String("transcript", name),
		logging.Int("chars", len(result.Text)),
		logging.String(logging.FieldEventType, "transcript_written"),
	)
	return []string{dest}, nil
}

// TranscribeFile runs detection and, when the detected language is not
// supported, the forced-language fallbacks in order. The returned result
// always carries a supported language and valid text.
func (t *Transcriber) TranscribeFile(ctx context.Context, audioPath string) (speech.Result, error) {
	logger := logging.WithContext(ctx, t.logger)

	detected, err := t.engine.Transcribe(ctx, audioPath, "")
	if err != nil {
		return speech.Result{}, err
	}
	lang := language.ToISO2(detected.Language)
	if language.IsSupported(lang) {
		if err := Validate(detected.Text); err != nil {
			return speech.Result{}, services.Wrap(services.ErrValidation, StageName, "validate", fmt.Sprintf("detected %s", lang), err)
		}
		return speech.Result{Text: detected.Text, Language: lang}, nil
	}

	logger.Info("detected language not supported; forcing fallbacks",
		logging.String("detected", language.DisplayName(detected.Language)),
		logging.String(logging.FieldEventType, "language_fallback"),
	)
	for _, forced := range language.Fallbacks {
		if err := ctx.Err(); err != nil {
			return speech.Result{}, err
		}
		result, err := t.engine.Transcribe(ctx, audioPath, forced)
		if err != nil {
			return speech.Result{}, err
		}
		if err := Validate(result.Text); err != nil {
			logger.Info("forced transcript rejected",
				logging.String(logging.FieldLanguage, forced),
				logging.String("reason", err.Error()),
				logging.String(logging.FieldEventType, "language_fallback_rejected"),
			)
			continue
		}
		return speech.Result{Text: result.Text, Language: forced}, nil
	}
	return speech.Result{}, services.Wrap(services.ErrValidation, StageName, "language fallback",
		fmt.Sprintf("detected %s", language.DisplayName(detected.Language)), ErrNoUsableTranscript)
}

func countPending(units []stage.Unit) int {
	n := 0
	for _, unit := range units {
		if !anyExists(unit.Outputs) {
			n++
		}
	}
	return n
}

func anyExists(paths []string) bool {
	for _, path := range paths {
		if fileutil.Exists(path) {
			return true
		}
	}
	return false
}
