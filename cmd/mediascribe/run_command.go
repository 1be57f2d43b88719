package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediascribe/internal/deps"
	"mediascribe/internal/extract"
	"mediascribe/internal/logging"
	"mediascribe/internal/notes"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/preflight"
	"mediascribe/internal/transcribe"
)

var errRunFailed = errors.New("pipeline failed: transcription did not complete")

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage: copy, extract, transcribe, summarize, extract TODOs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()
			warnMissingDeps(s)

			report, runErr := s.components.NewDriver().Run(s.ctx)
			if jsonOutput {
				if err := writeJSON(cmd, reportToJSON(report)); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderReport(report, shouldColorize(out)))
				if s.logPath != "" {
					fmt.Fprintf(out, "\nRun log: %s\n", s.logPath)
				}
			}
			if runErr != nil {
				return runErr
			}
			if report.ExitCode() != 0 {
				return errRunFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

type stageCommand struct {
	use   string
	stage string
	short string
}

var stageCommandSpecs = []stageCommand{
	{use: "copy-videos", stage: pipeline.CopyVideosStage, short: "Copy new screen recordings into the video directory"},
	{use: "copy-music", stage: pipeline.CopyMusicStage, short: "Copy new music files into the audio directory"},
	{use: "extract-audio", stage: extract.StageName, short: "Extract 16 kHz mono WAV audio from videos"},
	{use: "transcribe", stage: transcribe.StageName, short: "Transcribe audio files that have no transcript yet"},
	{use: "summarize", stage: notes.SummarizeStage, short: "Write Markdown summaries for new transcripts"},
	{use: "todos", stage: notes.TodosStage, short: "Extract TODO lists from new transcripts"},
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(stageCommandSpecs))
	for _, spec := range stageCommandSpecs {
		cmds = append(cmds, newStageCommand(ctx, spec))
	}
	return cmds
}

func newStageCommand(ctx *commandContext, spec stageCommand) *cobra.Command {
	return &cobra.Command{
		Use:   spec.use,
		Short: spec.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.components.RunStage(s.ctx, spec.stage)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStageResult(result, shouldColorize(out)))
			if err != nil {
				return fmt.Errorf("%s: %w", spec.stage, err)
			}
			return nil
		},
	}
}

func warnMissingDeps(s *session) {
	for _, dep := range deps.Missing(preflight.CheckSystemDeps(s.ctx, s.cfg)) {
		logging.WarnWithContext(s.logger, "dependency unavailable", "dependency_missing",
			logging.String("dependency", dep.Name),
			logging.String(logging.FieldErrorHint, dep.Detail),
			logging.String(logging.FieldImpact, "stages that need it will fail"),
		)
	}
}

func renderReport(report pipeline.Report, colorize bool) string {
	var b strings.Builder
	writeLines(&b, renderSectionHeader("Pipeline", colorize))
	if report.Classification == pipeline.ClassNothingToDo {
		fmt.Fprintln(&b, renderStatusLine("Result", statusInfo, string(report.Classification), colorize))
	} else {
		fmt.Fprintln(&b, stageTable(report.Stages))
		fmt.Fprintln(&b, renderStatusLine("Result", classificationKind(report.Classification), string(report.Classification), colorize))
		fmt.Fprintln(&b, renderInfoLine("Transcripts", strconv.Itoa(report.Counts.Transcripts)))
		fmt.Fprintln(&b, renderInfoLine("Summaries", strconv.Itoa(report.Counts.Summaries)))
		fmt.Fprintln(&b, renderInfoLine("TODO lists", strconv.Itoa(report.Counts.Todos)))
		fmt.Fprintln(&b, renderInfoLine("Duration", report.Duration.Round(time.Second).String()))
	}
	if len(report.Hints) > 0 {
		fmt.Fprintln(&b)
		writeLines(&b, renderSectionHeader("Next steps", colorize))
		for _, hint := range report.Hints {
			fmt.Fprintf(&b, "%s- %s\n", statusIndent, hint)
		}
	}
	return b.String()
}

func stageTable(results []pipeline.StageResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Name,
			string(r.Status),
			strconv.Itoa(r.Stats.Found),
			strconv.Itoa(r.Stats.Processed),
			strconv.Itoa(r.Stats.Skipped),
			strconv.Itoa(r.Stats.Failed),
			stageNote(r),
		})
	}
	return renderTable(
		[]string{"Stage", "Status", "Found", "Done", "Skipped", "Failed", "Note"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func stageNote(r pipeline.StageResult) string {
	switch {
	case r.Err != nil:
		return truncate(r.Err.Error(), 60)
	case r.Stats.SkipReason != "":
		return r.Stats.SkipReason
	default:
		return ""
	}
}

func renderStageResult(r pipeline.StageResult, colorize bool) string {
	message := string(r.Status)
	if note := stageNote(r); note != "" {
		message += ": " + note
	} else if r.Status == pipeline.StatusCompleted {
		message = fmt.Sprintf("%d processed, %d skipped, %d failed of %d", r.Stats.Processed, r.Stats.Skipped, r.Stats.Failed, r.Stats.Found)
	}
	return renderStatusLine(r.Name, stageStatusKind(r.Status), message, colorize)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func writeLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
