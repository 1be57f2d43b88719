package notes

import (
	"regexp"
	"strings"
	"time"

	"mediascribe/internal/artifact"
	"mediascribe/internal/language"
)

const thesisMarker = "thesis-coaching"

var stemDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Session describes a recording as far as prompt selection is concerned.
type Session struct {
	// Source is the transcript file name.
	Source   string
	Stem     string
	Language string
	// Date is the recording date as DD.MM.YYYY, empty when the stem has none.
	Date   string
	Thesis bool
}

// SessionFor derives prompt settings from a transcript artifact.
func SessionFor(a artifact.Artifact, source string) Session {
	return Session{
		Source:   source,
		Stem:     a.TranscriptStem(),
		Language: a.Language,
		Date:     DateFromStem(a.Stem),
		Thesis:   strings.Contains(strings.ToLower(a.Stem), thesisMarker),
	}
}

// English reports whether prompts and output should be English. Everything
// not tagged en, including untagged transcripts, is treated as German.
func (s Session) English() bool {
	return s.Language == language.English
}

// PromptLanguage returns the ISO code of the language the notes are written in.
func (s Session) PromptLanguage() string {
	if s.English() {
		return language.English
	}
	return language.German
}

func (s Session) dateOr(placeholder string) string {
	if s.Date == "" {
		return placeholder
	}
	return s.Date
}

// DateFromStem finds the first valid YYYY-MM-DD date in a file stem and
// returns it as DD.MM.YYYY.
func DateFromStem(stem string) string {
	for _, candidate := range stemDatePattern.FindAllString(stem, -1) {
		parsed, err := time.Parse("2006-01-02", candidate)
		if err != nil {
			continue
		}
		return parsed.Format("02.01.2006")
	}
	return ""
}
