package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediascribe/internal/logging"
	"mediascribe/internal/services"
	"mediascribe/internal/services/speech"
	"mediascribe/internal/testsupport"
)

type call struct {
	path string
	lang string
}

// scriptedEngine answers each language request from a fixed table.
type scriptedEngine struct {
	answers  map[string]speech.Result
	err      error
	checkErr error
	calls    []call
}

func (e *scriptedEngine) Name() string { return "scripted" }

func (e *scriptedEngine) Check() error { return e.checkErr }

func (e *scriptedEngine) Transcribe(_ context.Context, path, lang string) (speech.Result, error) {
	e.calls = append(e.calls, call{path: filepath.Base(path), lang: lang})
	if e.err != nil {
		return speech.Result{}, e.err
	}
	return e.answers[lang], nil
}

func newTranscriber(t *testing.T, engine speech.Engine) (*Transcriber, string, string) {
	t.Helper()
	root := t.TempDir()
	audio := filepath.Join(root, "audio")
	out := filepath.Join(root, "transcripts")
	if err := os.MkdirAll(audio, 0o755); err != nil {
		t.Fatal(err)
	}
	tr := New(engine, audio, out, []string{".wav", ".m4a"}, logging.NewNop())
	return tr, audio, out
}

const germanText = "Guten Morgen, heute sprechen wir über die Planung für das nächste Quartal."

func TestRunWritesGermanTranscriptOnce(t *testing.T) {
	engine := &scriptedEngine{answers: map[string]speech.Result{
		"": {Text: germanText, Language: "de"},
	}}
	tr, audio, out := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "meeting.wav"), "RIFF")

	stats, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	names := testsupport.ListNames(t, out)
	if len(names) != 1 || names[0] != "meeting_de.txt" {
		t.Fatalf("transcripts got %v want [meeting_de.txt]", names)
	}
	if got := testsupport.ReadFile(t, filepath.Join(out, "meeting_de.txt")); got != germanText+"\n" {
		t.Fatalf("transcript content got %q", got)
	}

	engine.calls = nil
	stats, err = tr.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(engine.calls) != 0 || stats.Skipped != 1 || stats.Processed != 0 {
		t.Fatalf("rerun must not call the engine: calls=%v stats=%+v", engine.calls, stats)
	}
	if names := testsupport.ListNames(t, out); len(names) != 1 {
		t.Fatalf("rerun changed outputs: %v", names)
	}
}

func TestFallbackGermanFirst(t *testing.T) {
	engine := &scriptedEngine{answers: map[string]speech.Result{
		"":   {Text: "Bonjour tout le monde", Language: "fr"},
		"de": {Text: germanText, Language: "de"},
		"en": {Text: "Good morning everyone, let us plan.", Language: "en"},
	}}
	tr, audio, out := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "call.m4a"), "x")

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(engine.calls) != 2 || engine.calls[1].lang != "de" {
		t.Fatalf("expected auto then forced de, got %v", engine.calls)
	}
	if names := testsupport.ListNames(t, out); len(names) != 1 || names[0] != "call_de.txt" {
		t.Fatalf("unexpected transcripts %v", names)
	}
}

func TestFallbackEnglishWhenGermanInvalid(t *testing.T) {
	engine := &scriptedEngine{answers: map[string]speech.Result{
		"":   {Text: "hola", Language: "es"},
		"de": {Text: "100 % 100 %", Language: "de"},
		"en": {Text: "Hello and welcome to the weekly review.", Language: "en"},
	}}
	tr, audio, out := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "call.wav"), "x")

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []call{{"call.wav", ""}, {"call.wav", "de"}, {"call.wav", "en"}}
	if len(engine.calls) != len(want) {
		t.Fatalf("calls got %v want %v", engine.calls, want)
	}
	for i := range want {
		if engine.calls[i] != want[i] {
			t.Fatalf("call %d got %v want %v", i, engine.calls[i], want[i])
		}
	}
	if names := testsupport.ListNames(t, out); len(names) != 1 || names[0] != "call_en.txt" {
		t.Fatalf("unexpected transcripts %v", names)
	}
}

func TestFallbackSkipsWhenAllInvalid(t *testing.T) {
	engine := &scriptedEngine{answers: map[string]speech.Result{
		"":   {Text: "ciao", Language: "it"},
		"de": {Text: "", Language: "de"},
		"en": {Text: "42", Language: "en"},
	}}
	tr, audio, out := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "noise.wav"), "x")

	stats, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Failed != 1 || stats.Processed != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if names := testsupport.ListNames(t, out); len(names) != 0 {
		t.Fatalf("expected no transcript, got %v", names)
	}
}

func TestTranscribeFileRejectsDegenerateSupportedLanguage(t *testing.T) {
	engine := &scriptedEngine{answers: map[string]speech.Result{
		"": {Text: "Untertitel Untertitel Untertitel Untertitel Untertitel Untertitel Untertitel Untertitel Untertitel Untertitel Untertitel", Language: "de"},
	}}
	tr, _, _ := newTranscriber(t, engine)

	_, err := tr.TranscribeFile(context.Background(), "/x/loop.wav")
	if !errors.Is(err, ErrRepetitiveText) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected repetitive validation error, got %v", err)
	}
	if len(engine.calls) != 1 {
		t.Fatalf("supported detection must not trigger fallbacks, calls=%v", engine.calls)
	}
}

func TestRunEngineUnavailableFailsStage(t *testing.T) {
	engine := &scriptedEngine{checkErr: services.Wrap(services.ErrNotFound, "transcribe", "locate whisper", "missing", nil)}
	tr, audio, _ := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "a.wav"), "x")

	if _, err := tr.Run(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunNoInputsDoesNotNeedEngine(t *testing.T) {
	engine := &scriptedEngine{checkErr: errors.New("unavailable")}
	tr, _, _ := newTranscriber(t, engine)
	stats, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("expected empty run to succeed, got %v", err)
	}
	if stats.Found != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRunEngineErrorContinues(t *testing.T) {
	engine := &scriptedEngine{err: errors.New("whisper crashed")}
	tr, audio, _ := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "a.wav"), "x")
	testsupport.WriteFile(t, filepath.Join(audio, "b.wav"), "x")

	stats, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("per-file errors must not fail the stage: %v", err)
	}
	if stats.Failed != 2 || len(engine.calls) != 2 {
		t.Fatalf("expected both files attempted, stats=%+v calls=%v", stats, engine.calls)
	}
}

func TestPending(t *testing.T) {
	engine := &scriptedEngine{}
	tr, audio, out := newTranscriber(t, engine)
	testsupport.WriteFile(t, filepath.Join(audio, "done.wav"), "x")
	testsupport.WriteFile(t, filepath.Join(audio, "todo.wav"), "x")
	testsupport.WriteFile(t, filepath.Join(out, "done_en.txt"), "text")

	pending, err := tr.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || filepath.Base(pending[0]) != "todo.wav" {
		t.Fatalf("pending got %v", pending)
	}
}
