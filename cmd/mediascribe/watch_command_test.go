package main

import (
	"context"
	"errors"
	"testing"

	"mediascribe/internal/pipeline"
)

func TestLockedRunHonoursRunLock(t *testing.T) {
	env := setupCLITestEnv(t)
	configFlag := env.configPath
	ctx := newCommandContext(&configFlag)

	s, err := ctx.openSession(context.Background(), false)
	if err != nil {
		t.Fatalf("openSession: %v", err)
	}
	defer s.Close()

	run := lockedRun(s)
	if err := run(context.Background()); err != nil {
		t.Fatalf("run on empty tree: %v", err)
	}

	lock, err := pipeline.AcquireLock(env.cfg.Paths.LockPath)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()
	if err := run(context.Background()); !errors.Is(err, pipeline.ErrBusy) {
		t.Fatalf("expected ErrBusy while locked, got %v", err)
	}
}
