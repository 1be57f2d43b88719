package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	langpkg "mediascribe/internal/language"
	"mediascribe/internal/services"
	"mediascribe/internal/services/speech"
)

// Defaults for the whisper CLI invocation.
const (
	DefaultCommand = "whisper"
	DefaultModel   = "base"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
)

// Config captures runtime settings for the whisper CLI.
type Config struct {
	Command string
	Model   string
	// Device is passed through as --device when set (e.g. "cpu", "cuda").
	Device string
	// Timeout bounds one invocation. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Service runs the openai-whisper command line tool.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = DefaultCommand
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Name identifies the engine in logs.
func (s *Service) Name() string {
	return "whisper/" + s.cfg.Model
}

// Command returns the executable the service invokes.
func (s *Service) Command() string {
	return s.cfg.Command
}

// Check verifies the whisper executable can be found.
func (s *Service) Check() error {
	if _, err := exec.LookPath(s.cfg.Command); err != nil {
		return services.Wrap(services.ErrNotFound, "transcribe", "locate whisper",
			fmt.Sprintf("binary %q not found; install openai-whisper or set transcription.command", s.cfg.Command), err)
	}
	return nil
}

// Transcribe runs whisper on audioPath. An empty language lets whisper
// detect it; otherwise the language is forced.
func (s *Service) Transcribe(ctx context.Context, audioPath, language string) (speech.Result, error) {
	if audioPath == "" {
		return speech.Result{}, errors.New("whisper: source path required")
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	outputDir, err := os.MkdirTemp("", "mediascribe-whisper-")
	if err != nil {
		return speech.Result{}, fmt.Errorf("whisper: create output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	if err := s.run(ctx, s.cfg.Command, s.buildArgs(audioPath, outputDir, language)...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return speech.Result{}, services.Wrap(services.ErrTimeout, "transcribe", "whisper", fmt.Sprintf("no result within %s", s.cfg.Timeout), err)
		}
		return speech.Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	payload, err := loadPayload(filepath.Join(outputDir, baseName+".json"))
	if err != nil {
		return speech.Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "read whisper output", "", err)
	}

	detected := langpkg.ToISO2(payload.Language)
	if forced := langpkg.ToISO2(language); forced != "" {
		detected = forced
	}
	return speech.Result{Text: payload.text(), Language: detected}, nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, lastLines(string(output), 5))
	}
	return nil
}

// buildArgs constructs the whisper command arguments.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	args := []string{
		source,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--verbose", "False",
	}
	device := strings.TrimSpace(s.cfg.Device)
	if device == "" || device == CPUDevice {
		// fp16 is unsupported on CPU and only produces a warning.
		args = append(args, "--fp16", "False")
	}
	if device != "" {
		args = append(args, "--device", device)
	}
	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// Segment is one timed span of whisper output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type payload struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

func (p payload) text() string {
	if text := strings.TrimSpace(p.Text); text != "" {
		return text
	}
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func loadPayload(jsonPath string) (payload, error) {
	var p payload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse whisper json: %w", err)
	}
	return p, nil
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
