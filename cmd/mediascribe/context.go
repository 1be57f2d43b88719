package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// session bundles what a command that executes stages needs: a signal-aware
// context carrying the run ID, the per-run logger, the wired components, and
// the run lock.
type session struct {
	ctx        context.Context
	runID      string
	cfg        *config.Config
	logger     *slog.Logger
	logPath    string
	components *pipeline.Components
	lock       *pipeline.RunLock
	stop       context.CancelFunc
}

func (c *commandContext) openSession(parent context.Context, takeLock bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if parent == nil {
		parent = context.Background()
	}

	runID := uuid.NewString()
	logger, logPath, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logPath)

	s := &session{runID: runID, cfg: cfg, logger: logger, logPath: logPath}
	if takeLock {
		lock, err := pipeline.AcquireLock(cfg.Paths.LockPath)
		if err != nil {
			if errors.Is(err, pipeline.ErrBusy) {
				return nil, fmt.Errorf("%w; wait for it to finish or remove a stale lock", err)
			}
			return nil, err
		}
		s.lock = lock
	}

	signalCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	s.ctx = services.WithRequestID(signalCtx, runID)
	s.stop = stop

	components, err := pipeline.NewComponents(s.ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("wire stages: %w", err)
	}
	s.components = components
	return s, nil
}

func (s *session) Close() {
	if s == nil {
		return
	}
	if s.stop != nil {
		s.stop()
	}
	if err := s.lock.Release(); err != nil {
		fmt.Fprintf(os.Stderr, "warn: release run lock: %v\n", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
