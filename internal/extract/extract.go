// Package extract pulls a transcription-ready audio track out of video files.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mediascribe/internal/collect"
	"mediascribe/internal/services"
	"mediascribe/internal/stage"
)

// StageName is the pipeline name of the audio extraction stage.
const StageName = "extract-audio"

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Extractor converts videos into 16 kHz mono WAV files.
type Extractor struct {
	ffmpeg     string
	videoDir   string
	audioDir   string
	extensions []string
	logger     *slog.Logger
	run        CommandRunner
}

// NewExtractor constructs an Extractor reading videoDir and writing audioDir.
func NewExtractor(ffmpegBinary, videoDir, audioDir string, extensions []string, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Extractor{
		ffmpeg:     ffmpegBinary,
		videoDir:   videoDir,
		audioDir:   audioDir,
		extensions: extensions,
		logger:     logger,
		run:        execCommand,
	}
}

// WithCommandRunner replaces the process runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		e.run = runner
	}
}

// Pending lists the videos that have no extracted audio yet.
func (e *Extractor) Pending() ([]string, error) {
	units, err := e.units()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, unit := range units {
		if _, err := os.Stat(unit.Outputs[0]); err != nil {
			pending = append(pending, unit.Input)
		}
	}
	return pending, nil
}

// HasInputs reports whether the video directory holds any supported video.
func (e *Extractor) HasInputs() bool {
	return collect.Count(e.videoDir, collect.Options{Extensions: e.extensions}) > 0
}

// Run extracts audio for every video whose {stem}.wav is missing.
func (e *Extractor) Run(ctx context.Context) (stage.Stats, error) {
	units, err := e.units()
	if err != nil {
		return stage.Stats{}, err
	}
	if err := os.MkdirAll(e.audioDir, 0o755); err != nil {
		return stage.Stats{}, services.Wrap(services.ErrConfiguration, StageName, "create audio dir", "Cannot create audio directory", err)
	}
	return stage.Process(ctx, e.logger, StageName, units, e.extractOne)
}

func (e *Extractor) units() ([]stage.Unit, error) {
	videos, err := collect.Files(e.videoDir, collect.Options{Extensions: e.extensions})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageName, "scan videos", "Cannot list video directory", err)
	}
	units := make([]stage.Unit, 0, len(videos))
	for _, video := range videos {
		units = append(units, stage.Unit{
			Input:   video,
			Outputs: []string{filepath.Join(e.audioDir, collect.Stem(video)+".wav")},
		})
	}
	return units, nil
}

func (e *Extractor) extractOne(ctx context.Context, video string) ([]string, error) {
	dest := filepath.Join(e.audioDir, collect.Stem(video)+".wav")
	tmp := filepath.Join(e.audioDir, "."+collect.Stem(video)+"."+uuid.NewString()+".wav")
	defer os.Remove(tmp)

	if err := e.run(ctx, e.ffmpeg, BuildArgs(video, tmp)...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, StageName, "ffmpeg", "Audio extraction failed", err)
	}
	info, err := os.Stat(tmp)
	if err != nil || info.Size() == 0 {
		return nil, services.Wrap(services.ErrExternalTool, StageName, "ffmpeg", "ffmpeg produced no audio", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return nil, fmt.Errorf("place %s: %w", filepath.Base(dest), err)
	}
	return []string{dest}, nil
}

// BuildArgs returns the ffmpeg arguments that write source's first audio
// stream to dest as 16-bit PCM, mono, 16 kHz.
func BuildArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

func execCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
