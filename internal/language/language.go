package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Transcript languages the pipeline writes. Anything else is forced onto one
// of these or the recording is skipped.
const (
	German  = "de"
	English = "en"
)

// Fallbacks lists forced transcription languages in the order they are tried.
var Fallbacks = []string{German, English}

// Speech engines report languages as ISO codes ("de"), bibliographic codes
// ("ger") or English names ("german"). x/text parses terminology codes only,
// so names and bibliographic codes are mapped here.
var names = map[string]string{
	"english":    "en",
	"german":     "de",
	"deutsch":    "de",
	"french":     "fr",
	"spanish":    "es",
	"italian":    "it",
	"portuguese": "pt",
	"dutch":      "nl",
	"polish":     "pl",
	"russian":    "ru",
	"japanese":   "ja",
	"chinese":    "zh",
	"korean":     "ko",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
	"turkish":    "tr",
	"ger":        "de",
	"fre":        "fr",
	"dut":        "nl",
	"chi":        "zh",
}

// ToISO2 converts a language code or English language name to ISO 639-1.
// Unrecognized input yields "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if iso, ok := names[code]; ok {
		return iso
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	iso := base.String()
	if len(iso) != 2 {
		return ""
	}
	return iso
}

// IsSupported reports whether code names a transcript language.
func IsSupported(code string) bool {
	switch ToISO2(code) {
	case German, English:
		return true
	}
	return false
}

// DisplayName returns the English name for a language code, "Unknown" for
// empty input, or the uppercased input when it cannot be parsed.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	iso := ToISO2(trimmed)
	if iso == "" {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(xlanguage.Make(iso)); name != "" {
		return name
	}
	return strings.ToUpper(iso)
}
