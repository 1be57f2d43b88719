package notes

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediascribe/internal/artifact"
	"mediascribe/internal/logging"
	"mediascribe/internal/services"
	"mediascribe/internal/services/llm"
	"mediascribe/internal/testsupport"
)

type fakeCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) Model() string { return "test-model" }

var longGerman = strings.Repeat("Wir haben heute die Architektur besprochen und nächste Schritte geplant. ", 3)

func newDirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	return filepath.Join(root, "transcripts"), filepath.Join(root, "summaries")
}

func TestSummarizerWritesFullStemSummary(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "thesis-coaching_2025-05-23_de.txt"), longGerman)
	client := &fakeCompleter{reply: "# 📝 Zusammenfassung (23.05.2025)\n\n- Punkt"}

	gen := NewSummarizer(client, Options{TranscriptsDir: transcripts, OutputDir: summaries, MaxTokens: 2000, Temperature: 0.3}, logging.NewNop())
	stats, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 || stats.Failed != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	got := testsupport.ReadFile(t, filepath.Join(summaries, "thesis-coaching_2025-05-23_de.md"))
	if got != client.reply+"\n" {
		t.Fatalf("summary content got %q", got)
	}

	if len(client.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(client.requests))
	}
	req := client.requests[0]
	if req.System != SummarySystemPrompt || req.MaxTokens != 2000 || req.Temperature != 0.3 {
		t.Fatalf("unexpected request settings %+v", req)
	}
	for _, want := range []string{"Thesis Coaching Session", "Masterarbeit", "Zusammenfassung (23.05.2025)", longGerman} {
		if !strings.Contains(req.User, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	stats, err = gen.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.Skipped != 1 || len(client.requests) != 1 {
		t.Fatalf("existing summary must be skipped, stats %+v requests %d", stats, len(client.requests))
	}
}

func TestTodoExtractorUsesEnglishPromptAndSuffix(t *testing.T) {
	transcripts, summaries := newDirs(t)
	todos := filepath.Join(summaries, "todos")
	english := strings.Repeat("We agreed to refactor the parser and review the deployment plan next week. ", 2)
	testsupport.WriteFile(t, filepath.Join(transcripts, "standup_en.txt"), english)
	client := &fakeCompleter{reply: "```markdown\n# 📋 TODO List - [DATE]\n- [ ] Refactor parser\n```"}

	gen := NewTodoExtractor(client, Options{TranscriptsDir: transcripts, OutputDir: todos, MaxTokens: 1500, Temperature: 0.2, Docx: true}, logging.NewNop())
	stats, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	got := testsupport.ReadFile(t, filepath.Join(todos, "standup_en_TODOs.md"))
	if got != "# 📋 TODO List - [DATE]\n- [ ] Refactor parser\n" {
		t.Fatalf("fence not stripped: %q", got)
	}
	if names := testsupport.ListNames(t, todos); len(names) != 1 {
		t.Fatalf("todo stage must not write docx, got %v", names)
	}
	req := client.requests[0]
	if req.System != TodoSystemPrompt || !strings.Contains(req.User, "CONCRETE TASKS") {
		t.Fatalf("expected English TODO prompt, got %q", req.User)
	}
}

func TestShortTranscriptIsSkippedWithoutRequest(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "kurz_de.txt"), "   zu kurz   ")
	client := &fakeCompleter{reply: "unused"}

	stats, err := NewSummarizer(client, Options{TranscriptsDir: transcripts, OutputDir: summaries}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Skipped != 1 || stats.Failed != 0 || len(client.requests) != 0 {
		t.Fatalf("unexpected stats %+v requests %d", stats, len(client.requests))
	}
	if names := testsupport.ListNames(t, summaries); len(names) != 0 {
		t.Fatalf("no summary expected, got %v", names)
	}
}

func TestCompletionFailureCountsAsFailed(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "a_de.txt"), longGerman)
	testsupport.WriteFile(t, filepath.Join(transcripts, "b_de.txt"), longGerman)
	client := &fakeCompleter{err: services.Wrap(services.ErrExternalTool, "llm", "complete", "boom", nil)}

	stats, err := NewSummarizer(client, Options{TranscriptsDir: transcripts, OutputDir: summaries}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 2 || stats.Processed != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestEmptyReplyFails(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "a_de.txt"), longGerman)
	client := &fakeCompleter{reply: "  \n "}

	stats, err := NewSummarizer(client, Options{TranscriptsDir: transcripts, OutputDir: summaries}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestFrontMatterAndDocx(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "sync_2024-02-29_en.txt"), strings.Repeat("We discussed the release checklist in detail. ", 4))
	client := &fakeCompleter{reply: "# Summary\n\n- **Release** is on track"}

	gen := NewSummarizer(client, Options{TranscriptsDir: transcripts, OutputDir: summaries, FrontMatter: true, Docx: true}, logging.NewNop())
	gen.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	stats, err := gen.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stats.Outputs) != 2 {
		t.Fatalf("expected markdown and docx outputs, got %v", stats.Outputs)
	}

	doc := testsupport.ReadFile(t, filepath.Join(summaries, "sync_2024-02-29_en.md"))
	fm, body, err := SplitFrontMatter(doc)
	if err != nil {
		t.Fatalf("SplitFrontMatter: %v", err)
	}
	want := FrontMatter{
		Kind:        "summary",
		Source:      "sync_2024-02-29_en.txt",
		Language:    "en",
		Date:        "29.02.2024",
		Model:       "test-model",
		GeneratedAt: "2024-03-01T09:30:00Z",
	}
	if fm != want {
		t.Fatalf("front matter got %+v want %+v", fm, want)
	}
	if body != client.reply+"\n" {
		t.Fatalf("body got %q", body)
	}

	xml := readDocxXML(t, filepath.Join(summaries, "sync_2024-02-29_en.docx"))
	for _, want := range []string{"Sync 2024 02 29", "Release", "is on track"} {
		if !strings.Contains(xml, want) {
			t.Fatalf("docx missing %q", want)
		}
	}
}

func TestUntaggedTranscriptUsesGermanAndWholeStem(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "notizen.txt"), longGerman)
	client := &fakeCompleter{reply: "# Zusammenfassung"}

	gen := NewSummarizer(client, Options{TranscriptsDir: transcripts, OutputDir: summaries}, logging.NewNop())
	if !gen.HasInputs() {
		t.Fatal("expected inputs")
	}
	pending, err := gen.Pending()
	if err != nil || len(pending) != 1 {
		t.Fatalf("Pending got %v, %v", pending, err)
	}
	if _, err := gen.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	testsupport.ReadFile(t, filepath.Join(summaries, "notizen.md"))
	if !strings.Contains(client.requests[0].User, "deutsche Sprache") {
		t.Fatal("expected German prompt for untagged transcript")
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	transcripts, summaries := newDirs(t)
	testsupport.WriteFile(t, filepath.Join(transcripts, "a_de.txt"), longGerman)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSummarizer(&fakeCompleter{reply: "x"}, Options{TranscriptsDir: transcripts, OutputDir: summaries}, logging.NewNop()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestKindNames(t *testing.T) {
	gen := NewTodoExtractor(&fakeCompleter{}, Options{}, logging.NewNop())
	if gen.Name() != TodosStage || gen.opts.Kind != artifact.KindTodo || gen.opts.MinChars != defaultMinChars {
		t.Fatalf("unexpected generator %+v", gen.opts)
	}
}

func readDocxXML(t *testing.T, path string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatal("document.xml not found")
	return ""
}
