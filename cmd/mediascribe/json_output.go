package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"mediascribe/internal/pipeline"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type stageJSON struct {
	Name       string `json:"name"`
	Mandatory  bool   `json:"mandatory"`
	Status     string `json:"status"`
	Found      int    `json:"found"`
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	SkipReason string `json:"skip_reason,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type reportJSON struct {
	RunID          string             `json:"run_id"`
	Classification string             `json:"classification"`
	ExitCode       int                `json:"exit_code"`
	DurationMS     int64              `json:"duration_ms"`
	Inventory      pipeline.Inventory `json:"inventory"`
	Counts         pipeline.Counts    `json:"counts"`
	Stages         []stageJSON        `json:"stages"`
	Hints          []string           `json:"hints,omitempty"`
}

func stageToJSON(result pipeline.StageResult) stageJSON {
	out := stageJSON{
		Name:       result.Name,
		Mandatory:  result.Mandatory,
		Status:     string(result.Status),
		Found:      result.Stats.Found,
		Processed:  result.Stats.Processed,
		Skipped:    result.Stats.Skipped,
		Failed:     result.Stats.Failed,
		SkipReason: result.Stats.SkipReason,
		DurationMS: result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	return out
}

func reportToJSON(report pipeline.Report) reportJSON {
	out := reportJSON{
		RunID:          report.RunID,
		Classification: string(report.Classification),
		ExitCode:       report.ExitCode(),
		DurationMS:     report.Duration.Milliseconds(),
		Inventory:      report.Inventory,
		Counts:         report.Counts,
		Hints:          report.Hints,
	}
	for _, stage := range report.Stages {
		out.Stages = append(out.Stages, stageToJSON(stage))
	}
	return out
}
