package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
)

const (
	docxFont     = "Calibri"
	docxFontSize = 11
	docxColor    = "000000"
)

var (
	mdHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	mdBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	mdBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	mdCheckbox = regexp.MustCompile(`^[\-\*]\s+\[( |x|X)\]\s+(.+)$`)
)

// DocumentTitle turns a transcript stem into a readable heading, e.g.
// "thesis-coaching_2025-05-23" becomes "Thesis Coaching 2025 05 23".
func DocumentTitle(stem, lang string) string {
	tag := xlanguage.German
	if lang == "en" {
		tag = xlanguage.English
	}
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	return cases.Title(tag).String(strings.Join(words, " "))
}

// WriteDocx renders markdown into a Word document at path. The file appears
// under its final name only once it is complete.
func WriteDocx(path, title, markdown string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}

	addRun(doc.AddParagraph(""), title, true, 16)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		if m := mdHeading.FindStringSubmatch(trimmed); m != nil {
			addRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := mdCheckbox.FindStringSubmatch(trimmed); m != nil {
			box := "☐ "
			if m[1] != " " {
				box = "☑ "
			}
			addRich(doc.AddParagraph(""), box+m[2])
			continue
		}
		if m := mdBullet.FindStringSubmatch(trimmed); m != nil {
			addRich(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		addRich(doc.AddParagraph(""), trimmed)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tmp := filepath.Join(filepath.Dir(path), "."+base+".part.docx")
	if err := doc.SaveTo(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("save docx: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename docx: %w", err)
	}
	return nil
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 12
	default:
		return docxFontSize
	}
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(plainInline(text)).Font(docxFont).Size(size).Color(docxColor)
	if bold {
		run.Bold(true)
	}
}

// addRich keeps **bold** spans bold and strips other inline markup.
func addRich(p *docx.Paragraph, text string) {
	parts := mdBold.Split(text, -1)
	matches := mdBold.FindAllStringSubmatch(text, -1)
	for i, part := range parts {
		if part != "" {
			p.AddText(plainInline(part)).Font(docxFont).Size(docxFontSize).Color(docxColor)
		}
		if i < len(matches) {
			p.AddText(plainInline(matches[i][1])).Font(docxFont).Size(docxFontSize).Color(docxColor).Bold(true)
		}
	}
}

func plainInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}
