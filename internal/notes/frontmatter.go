package notes

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML header written above generated notes.
type FrontMatter struct {
	Kind        string `yaml:"kind"`
	Source      string `yaml:"source"`
	Language    string `yaml:"language"`
	Date        string `yaml:"date,omitempty"`
	Model       string `yaml:"model,omitempty"`
	GeneratedAt string `yaml:"generated_at"`
}

// NewFrontMatter fills the header for one session.
func NewFrontMatter(kind string, s Session, model string, generatedAt time.Time) FrontMatter {
	return FrontMatter{
		Kind:        kind,
		Source:      s.Source,
		Language:    s.PromptLanguage(),
		Date:        s.Date,
		Model:       model,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
	}
}

// Render prepends the header to body.
func (f FrontMatter) Render(body string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// SplitFrontMatter separates a leading YAML header from the markdown body.
// Documents without a header return a zero FrontMatter and the input.
func SplitFrontMatter(doc string) (FrontMatter, string, error) {
	if !strings.HasPrefix(doc, "---\n") {
		return FrontMatter{}, doc, nil
	}
	rest := doc[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return FrontMatter{}, doc, nil
	}
	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return FrontMatter{}, doc, fmt.Errorf("decode front matter: %w", err)
	}
	body := strings.TrimLeft(rest[end+len("\n---\n"):], "\n")
	return fm, body, nil
}
