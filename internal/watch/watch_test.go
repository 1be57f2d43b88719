package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mediascribe/internal/logging"
	"mediascribe/internal/testsupport"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startWatcher(t *testing.T, dir string, run RunFunc) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(Options{
		Dirs:       []string{dir, filepath.Join(dir, "missing")},
		Extensions: []string{".wav", ".mkv"},
		Settle:     50 * time.Millisecond,
		Logger:     logging.NewNop(),
	}, run)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := w.Watched(); len(got) != 1 || got[0] != dir {
		t.Fatalf("watched got %v", got)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	// give the watcher loop a moment to start
	time.Sleep(50 * time.Millisecond)
	return cancel, done
}

func TestWatcherRunsAfterSettle(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	cancel, done := startWatcher(t, dir, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden.wav"), "ignored")
	time.Sleep(200 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("irrelevant files must not trigger a run, got %d", runs.Load())
	}

	testsupport.WriteFile(t, filepath.Join(dir, "meeting.wav"), "audio")
	waitFor(t, func() bool { return runs.Load() == 1 })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Start returned %v", err)
	}
}

func TestWatcherCoalescesEventsDuringRun(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	release := make(chan struct{})
	cancel, done := startWatcher(t, dir, func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
		return nil
	})
	defer func() {
		cancel()
		<-done
	}()

	testsupport.WriteFile(t, filepath.Join(dir, "a.wav"), "a")
	waitFor(t, func() bool { return runs.Load() == 1 })

	testsupport.WriteFile(t, filepath.Join(dir, "b.wav"), "b")
	time.Sleep(150 * time.Millisecond)
	testsupport.WriteFile(t, filepath.Join(dir, "c.mkv"), "c")
	time.Sleep(150 * time.Millisecond)
	close(release)

	waitFor(t, func() bool { return runs.Load() == 2 })
	time.Sleep(200 * time.Millisecond)
	if got := runs.Load(); got != 2 {
		t.Fatalf("expected exactly one follow-up run, got %d runs", got)
	}
}

func TestNewRequiresExistingDirectory(t *testing.T) {
	_, err := New(Options{Dirs: []string{filepath.Join(t.TempDir(), "nope")}}, func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error when no directory exists")
	}
}

func TestRelevant(t *testing.T) {
	w := &Watcher{opts: Options{Extensions: []string{".mp4"}}}
	cases := map[string]bool{
		"/x/clip.MP4":  true,
		"/x/clip.mp4":  true,
		"/x/.clip.mp4": false,
		"/x/clip.wav":  false,
	}
	for path, want := range cases {
		if got := w.Relevant(path); got != want {
			t.Fatalf("Relevant(%q) = %v, want %v", path, got, want)
		}
	}
}
