package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"mediascribe/internal/language"
)

// Kind identifies which pipeline stage produced an artifact.
type Kind int

const (
	KindTranscript Kind = iota + 1
	KindSummary
	KindTodo
)

func (k Kind) String() string {
	switch k {
	case KindTranscript:
		return "transcript"
	case KindSummary:
		return "summary"
	case KindTodo:
		return "todo"
	default:
		return "unknown"
	}
}

const (
	transcriptExt = ".txt"
	summaryExt    = ".md"
	todoSuffix    = "_TODOs.md"
)

// Artifact is a pipeline output identified by the stem of the recording it
// derives from, its kind, and the transcript language. Language is empty for
// summaries and TODO lists of untagged transcripts.
type Artifact struct {
	Stem     string
	Kind     Kind
	Language string
}

// Encode returns the file name for a.
//
//	transcript: {stem}_{lang}.txt
//	summary:    {stem}[_{lang}].md
//	todo:       {stem}[_{lang}]_TODOs.md
func Encode(a Artifact) (string, error) {
	stem := strings.TrimSpace(a.Stem)
	if stem == "" {
		return "", fmt.Errorf("artifact: empty stem")
	}
	if strings.ContainsAny(stem, `/\`) {
		return "", fmt.Errorf("artifact: stem %q contains a path separator", stem)
	}
	lang := a.Language
	if lang != "" && lang != language.German && lang != language.English {
		return "", fmt.Errorf("artifact: unsupported language %q", lang)
	}
	base := stem
	if lang != "" {
		base = stem + "_" + lang
	}

	switch a.Kind {
	case KindTranscript:
		if lang == "" {
			return "", fmt.Errorf("artifact: transcript %q needs a language", stem)
		}
		return base + transcriptExt, nil
	case KindSummary:
		return base + summaryExt, nil
	case KindTodo:
		return base + todoSuffix, nil
	default:
		return "", fmt.Errorf("artifact: unknown kind %d", a.Kind)
	}
}

// MustEncode is Encode for values constructed by this package's helpers.
func MustEncode(a Artifact) string {
	name, err := Encode(a)
	if err != nil {
		panic(err)
	}
	return name
}

// Decode parses a file name produced by Encode. Directory components are
// ignored. Transcripts must carry a language tag; summaries and TODO lists
// without one decode with an empty Language.
func Decode(name string) (Artifact, error) {
	base := filepath.Base(name)

	var kind Kind
	var rest string
	switch {
	case strings.HasSuffix(base, todoSuffix):
		kind = KindTodo
		rest = strings.TrimSuffix(base, todoSuffix)
	case strings.HasSuffix(base, summaryExt):
		kind = KindSummary
		rest = strings.TrimSuffix(base, summaryExt)
	case strings.HasSuffix(base, transcriptExt):
		kind = KindTranscript
		rest = strings.TrimSuffix(base, transcriptExt)
	default:
		return Artifact{}, fmt.Errorf("artifact: %q has no known suffix", base)
	}
	if rest == "" {
		return Artifact{}, fmt.Errorf("artifact: %q has an empty stem", base)
	}

	stem, lang := splitLanguage(rest)
	if kind == KindTranscript && lang == "" {
		return Artifact{}, fmt.Errorf("artifact: transcript %q has no language tag", base)
	}
	return Artifact{Stem: stem, Kind: kind, Language: lang}, nil
}

func splitLanguage(rest string) (string, string) {
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return rest, ""
	}
	switch tag := rest[idx+1:]; tag {
	case language.German, language.English:
		return rest[:idx], tag
	}
	return rest, ""
}

// Transcript builds the transcript artifact for a recording stem.
func Transcript(stem, lang string) Artifact {
	return Artifact{Stem: stem, Kind: KindTranscript, Language: lang}
}

// TranscriptCandidates returns every transcript file name a recording stem
// may have produced, in fallback order.
func TranscriptCandidates(stem string) []string {
	names := make([]string, 0, len(language.Fallbacks))
	for _, lang := range language.Fallbacks {
		names = append(names, MustEncode(Transcript(stem, lang)))
	}
	return names
}

// FromTranscriptFile identifies a transcript file. Files that do not follow
// the tagged naming keep their whole stem and an empty language, so hand
// placed transcripts still flow through the later stages.
func FromTranscriptFile(name string) Artifact {
	if a, err := Decode(name); err == nil && a.Kind == KindTranscript {
		return a
	}
	base := filepath.Base(name)
	return Artifact{Stem: strings.TrimSuffix(base, filepath.Ext(base)), Kind: KindTranscript}
}

// SummaryFor returns the summary artifact derived from a transcript.
func SummaryFor(t Artifact) Artifact {
	return Artifact{Stem: t.Stem, Kind: KindSummary, Language: t.Language}
}

// TodoFor returns the TODO list artifact derived from a transcript.
func TodoFor(t Artifact) Artifact {
	return Artifact{Stem: t.Stem, Kind: KindTodo, Language: t.Language}
}

// TranscriptStem is the full file stem of a transcript, which names the
// summary and TODO list derived from it.
func (a Artifact) TranscriptStem() string {
	if a.Language == "" {
		return a.Stem
	}
	return a.Stem + "_" + a.Language
}
