package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediascribe/internal/logging"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/services"
	"mediascribe/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the pipeline whenever new media appears",
		Long: "Watch the audio and video directories (and, when watch.include_sources is set, the music\n" +
			"and screen-capture sources) and run the full pipeline after files stop changing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := s.cfg
			dirs := []string{cfg.Paths.AudioDir, cfg.Paths.VideoDir}
			exts := slices.Concat(cfg.Extensions.Audio, cfg.Extensions.Video)
			if cfg.Watch.IncludeSources {
				if cfg.Sources.CopyMusic {
					dirs = append(dirs, cfg.Sources.MusicDir)
				}
				if cfg.Sources.CopyVideos {
					dirs = append(dirs, cfg.Sources.VideosDir)
				}
				exts = append(exts, cfg.Extensions.Music...)
			}
			slices.Sort(exts)
			exts = slices.Compact(exts)

			w, err := watch.New(watch.Options{
				Dirs:       dirs,
				Extensions: exts,
				Settle:     time.Duration(cfg.Watch.SettleSeconds) * time.Second,
				RunOnStart: runOnStart,
				Logger:     s.logger,
			}, lockedRun(s))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d director(ies); press Ctrl+C to stop\n", len(w.Watched()))

			if err := w.Start(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-now", true, "Run the pipeline once before waiting for changes")
	return cmd
}

// lockedRun returns a watch callback that takes the run lock for each pass,
// so a manual run and the watcher never overlap.
func lockedRun(s *session) watch.RunFunc {
	return func(ctx context.Context) error {
		lock, err := pipeline.AcquireLock(s.cfg.Paths.LockPath)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		runCtx := services.WithRequestID(ctx, uuid.NewString())
		report, err := s.components.NewDriver().Run(runCtx)
		if err != nil {
			return err
		}
		s.logger.Info("watch pass finished",
			logging.String("classification", string(report.Classification)),
			logging.Int("transcripts", report.Counts.Transcripts),
			logging.Int("summaries", report.Counts.Summaries),
			logging.Int("todos", report.Counts.Todos),
		)
		if report.ExitCode() != 0 {
			return errRunFailed
		}
		return nil
	}
}
