package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediascribe/internal/collect"
	"mediascribe/internal/config"
	"mediascribe/internal/deps"
	"mediascribe/internal/logging"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/preflight"
)

type statusSnapshot struct {
	ConfigPath   string              `json:"config_path"`
	ConfigExists bool                `json:"config_exists"`
	RunActive    bool                `json:"run_active"`
	Dependencies []deps.Status       `json:"dependencies"`
	Checks       []preflight.Result  `json:"checks"`
	Directories  []directorySnapshot `json:"directories"`
	Counts       pipeline.Counts     `json:"counts"`
	Backlog      pipeline.Backlog    `json:"backlog"`
	Unsupported  []string            `json:"unsupported_videos,omitempty"`
}

type directorySnapshot struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Files int    `json:"files"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkLLM bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependencies, and pending work",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			snap, err := collectStatus(cmd, ctx, cfg, checkLLM)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, snap)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderStatus(cfg, snap, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkLLM, "check-llm", false, "Contact the LLM API to verify the credential")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

func collectStatus(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, checkLLM bool) (statusSnapshot, error) {
	snap := statusSnapshot{
		ConfigPath:   ctx.configPath,
		ConfigExists: ctx.configExists,
		Dependencies: preflight.CheckSystemDeps(cmd.Context(), cfg),
		Checks:       preflight.RunAll(cmd.Context(), cfg, preflight.Options{CheckLLM: checkLLM}),
		Counts:       pipeline.CountArtifacts(cfg),
		Unsupported:  pipeline.UnsupportedVideos(cfg),
	}

	lock, err := pipeline.AcquireLock(cfg.Paths.LockPath)
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		snap.RunActive = true
	case err != nil:
		return statusSnapshot{}, err
	default:
		_ = lock.Release()
	}

	inputs := []struct {
		name string
		dir  string
		exts []string
	}{
		{"Audio", cfg.Paths.AudioDir, cfg.Extensions.Audio},
		{"Video", cfg.Paths.VideoDir, cfg.Extensions.Video},
		{"Transcripts", cfg.Paths.TranscriptsDir, []string{".txt"}},
		{"Summaries", cfg.Paths.SummariesDir, []string{".md", ".docx"}},
		{"TODO lists", cfg.Paths.TodosDir, []string{".md"}},
	}
	for _, in := range inputs {
		snap.Directories = append(snap.Directories, directorySnapshot{
			Name:  in.name,
			Path:  in.dir,
			Files: collect.Count(in.dir, collect.Options{Extensions: in.exts}),
		})
	}

	components, err := pipeline.NewComponents(cmd.Context(), cfg, logging.NewNop())
	if err != nil {
		return statusSnapshot{}, fmt.Errorf("wire stages: %w", err)
	}
	backlog, err := components.Backlog()
	if err != nil {
		return statusSnapshot{}, err
	}
	snap.Backlog = backlog
	return snap, nil
}

func renderStatus(cfg *config.Config, snap statusSnapshot, colorize bool) string {
	var b strings.Builder

	writeLines(&b, renderSectionHeader("Configuration", colorize))
	configLine := snap.ConfigPath
	if !snap.ConfigExists {
		configLine += " (not found; defaults in use)"
	}
	fmt.Fprintln(&b, renderInfoLine("Config file", configLine))
	fmt.Fprintln(&b, renderInfoLine("Data directory", cfg.Paths.DataDir))
	fmt.Fprintln(&b, renderInfoLine("Log directory", cfg.Paths.LogDir))
	fmt.Fprintln(&b, renderInfoLine("Transcription", transcriptionLabel(cfg)))
	fmt.Fprintln(&b, renderInfoLine("LLM", fmt.Sprintf("%s (%s)", cfg.LLM.Provider, cfg.LLM.Model)))
	fmt.Fprintln(&b, renderInfoLine("Summaries", yesNo(cfg.Summaries.Enabled)))
	fmt.Fprintln(&b, renderInfoLine("TODO lists", yesNo(cfg.Todos.Enabled)))
	if snap.RunActive {
		fmt.Fprintln(&b, renderStatusLine("Run lock", statusWarn, "a run is in progress", colorize))
	} else {
		fmt.Fprintln(&b, renderStatusLine("Run lock", statusOK, "idle", colorize))
	}

	fmt.Fprintln(&b)
	writeLines(&b, renderSectionHeader("Dependencies", colorize))
	writeLines(&b, dependencyLines(snap.Dependencies, colorize))

	fmt.Fprintln(&b)
	writeLines(&b, renderSectionHeader("Checks", colorize))
	writeLines(&b, checkLines(snap.Checks, colorize))

	fmt.Fprintln(&b)
	writeLines(&b, renderSectionHeader("Data", colorize))
	rows := make([][]string, 0, len(snap.Directories))
	for _, d := range snap.Directories {
		rows = append(rows, []string{d.Name, strconv.Itoa(d.Files), d.Path})
	}
	fmt.Fprintln(&b, renderTable([]string{"Directory", "Files", "Path"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	writeLines(&b, backlogLines(snap.Backlog, colorize))
	if len(snap.Unsupported) > 0 {
		names := make([]string, 0, len(snap.Unsupported))
		for _, path := range snap.Unsupported {
			names = append(names, filepath.Base(path))
		}
		fmt.Fprintln(&b, renderStatusLine("Unsupported videos", statusWarn,
			fmt.Sprintf("%s (convert to mp4/mov/mkv/avi to process)", strings.Join(names, ", ")), colorize))
	}
	return b.String()
}

func transcriptionLabel(cfg *config.Config) string {
	if cfg.Transcription.Engine == config.EngineAPI {
		return "api (" + cfg.Transcription.APIModel + ")"
	}
	return fmt.Sprintf("whisper (model %s, %s)", cfg.Transcription.Model, cfg.Transcription.Device)
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			if dep.Detail != "" {
				message += " " + dep.Detail
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if missing := deps.Missing(statuses); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, dep := range missing {
			names = append(names, dep.Name)
		}
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(names, ", "), colorize))
	}
	return lines
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func backlogLines(b pipeline.Backlog, colorize bool) []string {
	entries := []struct {
		label string
		count int
		what  string
	}{
		{"Extract backlog", b.Extract, "video(s) without audio"},
		{"Transcribe backlog", b.Transcribe, "audio file(s) without transcript"},
		{"Summary backlog", b.Summarize, "transcript(s) without summary"},
		{"TODO backlog", b.Todos, "transcript(s) without TODO list"},
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		kind := statusOK
		if e.count > 0 {
			kind = statusInfo
		}
		lines = append(lines, renderStatusLine(e.label, kind, fmt.Sprintf("%d %s", e.count, e.what), colorize))
	}
	return lines
}
