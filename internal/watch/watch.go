package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mediascribe/internal/logging"
)

const defaultSettle = 5 * time.Second

// RunFunc performs one full pipeline pass.
type RunFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Dirs are watched non-recursively. Missing directories are skipped.
	Dirs       []string
	Extensions []string
	// Settle is the quiet period after the last event before a run starts.
	Settle time.Duration
	// RunOnStart triggers one pass before any event arrives.
	RunOnStart bool
	Logger     *slog.Logger
}

// Watcher runs the pipeline whenever media files appear in the watched
// directories. Runs never overlap; events during a run collapse into a
// single follow-up run.
type Watcher struct {
	opts    Options
	run     RunFunc
	logger  *slog.Logger
	fs      *fsnotify.Watcher
	watched []string
}

// New creates a Watcher and registers the existing directories.
func New(opts Options, run RunFunc) (*Watcher, error) {
	if run == nil {
		return nil, errors.New("watch: run function required")
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{opts: opts, run: run, logger: logging.NewComponentLogger(logger, "watch"), fs: fsw}
	for _, dir := range opts.Dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			w.logger.Info("directory not found; not watching", logging.String("dir", dir))
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("add watch path %s: %w", dir, err)
		}
		w.watched = append(w.watched, dir)
	}
	if len(w.watched) == 0 {
		fsw.Close()
		return nil, errors.New("watch: none of the directories exist")
	}
	return w, nil
}

// Watched returns the directories being monitored.
func (w *Watcher) Watched() []string {
	return slices.Clone(w.watched)
}

// Start blocks until ctx is cancelled, then waits for an in-flight run to
// finish and returns ctx.Err().
func (w *Watcher) Start(ctx context.Context) error {
	defer w.fs.Close()

	runCtx, cancel := context.WithCancel(ctx)
	trigger := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-trigger:
				w.runOnce(runCtx)
			}
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	request := func(reason string) {
		select {
		case trigger <- struct{}{}:
			w.logger.Debug("run scheduled", logging.String("reason", reason))
		default:
			w.logger.Debug("run already pending", logging.String("reason", reason))
		}
	}

	w.logger.Info("watching for new media",
		logging.String("dirs", strings.Join(w.watched, ", ")),
		logging.Duration("settle", w.opts.Settle),
		logging.String(logging.FieldEventType, "watch_start"),
	)
	if w.opts.RunOnStart {
		request("startup")
	}

	settle := time.NewTimer(w.opts.Settle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", logging.String(logging.FieldEventType, "watch_stop"))
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.Relevant(event.Name) {
				continue
			}
			w.logger.Debug("media event", logging.String(logging.FieldArtifact, filepath.Base(event.Name)), logging.String("op", event.Op.String()))
			settle.Reset(w.opts.Settle)
		case <-settle.C:
			request("files changed")
		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check inotify limits (fs.inotify.max_user_watches)"),
			)
		}
	}
}

// Relevant reports whether path is a visible file with a watched extension.
func (w *Watcher) Relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.opts.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.opts.Extensions, strings.ToLower(filepath.Ext(base)))
}

func (w *Watcher) runOnce(ctx context.Context) {
	started := time.Now()
	w.logger.Info("change detected; running pipeline", logging.String(logging.FieldEventType, "watch_run"))
	if err := w.run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(w.logger, "pipeline run failed", "watch_run_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "waiting for the next change before retrying"),
		)
		return
	}
	w.logger.Info("pipeline run finished",
		logging.Duration("duration", time.Since(started).Round(time.Millisecond)),
		logging.String(logging.FieldEventType, "watch_run_complete"),
	)
}
