package transcribe

import (
	"errors"
	"strings"
	"unicode"
)

const (
	repetitionMinWords    = 10
	repetitionMinDistinct = 5
)

// Validation failures.
var (
	ErrEmptyText      = errors.New("transcript is empty")
	ErrNumericText    = errors.New("transcript contains only digits and percent signs")
	ErrRepetitiveText = errors.New("transcript is repetitive")
)

// Validate rejects degenerate transcripts: empty text, text made only of
// digits, percent signs and whitespace, and text of more than 10 words with
// fewer than 5 distinct words.
func Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyText
	}
	numeric := strings.IndexFunc(trimmed, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '%' && !unicode.IsSpace(r)
	}) == -1
	if numeric {
		return ErrNumericText
	}

	words := strings.Fields(trimmed)
	if len(words) > repetitionMinWords {
		distinct := make(map[string]struct{}, len(words))
		for _, word := range words {
			distinct[normalizeWord(word)] = struct{}{}
		}
		if len(distinct) < repetitionMinDistinct {
			return ErrRepetitiveText
		}
	}
	return nil
}

func normalizeWord(word string) string {
	trimmed := strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	if trimmed == "" {
		trimmed = word
	}
	return strings.ToLower(trimmed)
}
