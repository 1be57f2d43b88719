package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"mediascribe/internal/pipeline"
	"mediascribe/internal/testsupport"
)

func TestStatusReportsBacklog(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.AudioDir, "lecture.flac"), "a")
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.VideoDir, "screen.webm"), "v")
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.TranscriptsDir, "review_en.txt"), "x")

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "Whisper:")
	requireContains(t, out, "1 audio file(s) without transcript")
	requireContains(t, out, "1 transcript(s) without summary")
	requireContains(t, out, "screen.webm")
	requireContains(t, out, "[OK] idle")
	requireContains(t, out, "missing; set OPENAI_API_KEY")
}

func TestStatusJSONShowsActiveRun(t *testing.T) {
	env := setupCLITestEnv(t)
	lock, err := pipeline.AcquireLock(env.cfg.Paths.LockPath)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var snap statusSnapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if !snap.RunActive || snap.ConfigPath != env.configPath || !snap.ConfigExists {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if len(snap.Directories) != 5 {
		t.Fatalf("expected five directories, got %+v", snap.Directories)
	}
}
