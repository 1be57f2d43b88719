package preflight

import (
	"context"

	"mediascribe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Options selects the checks that cost a network round trip.
type Options struct {
	CheckLLM bool
}

// RunAll executes all applicable checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir),
		CheckDirectoryAccess("Video directory", cfg.Paths.VideoDir),
		CheckDirectoryAccess("Transcripts directory", cfg.Paths.TranscriptsDir),
		CheckDirectoryAccess("Summaries directory", cfg.Paths.SummariesDir),
		CheckDirectoryAccess("TODO directory", cfg.Paths.TodosDir),
	}
	if cfg.Sources.CopyVideos {
		results = append(results, CheckSourceDirectory("Video source", cfg.Sources.VideosDir))
	}
	if cfg.Sources.CopyMusic {
		results = append(results, CheckSourceDirectory("Music source", cfg.Sources.MusicDir))
	}

	if cfg.Summaries.Enabled || cfg.Todos.Enabled {
		if opts.CheckLLM {
			results = append(results, CheckLLM(ctx, "LLM API", cfg.GetLLM()))
		} else {
			results = append(results, CheckCredential(cfg))
		}
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
