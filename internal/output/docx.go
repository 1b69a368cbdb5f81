package output

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
	textColor = "000000"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*+]\s+(.+)$`)
	reSSMLTag = regexp.MustCompile(`<break time="[^"]*"/>`)
)

// markdownToDocx writes the reconciled text as a styled docx file. Blank
// lines separate paragraphs; lines inside a paragraph are joined.
func markdownToDocx(title, text, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, titleSize)

	for _, block := range strings.Split(reSSMLTag.ReplaceAllString(text, ""), "\n\n") {
		var para []string
		flush := func() {
			if len(para) > 0 {
				addRichText(doc.AddParagraph(""), strings.Join(para, " "))
				para = nil
			}
		}

		for _, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || trimmed == "---" {
				continue
			}

			if m := reHeading.FindStringSubmatch(trimmed); m != nil {
				flush()
				addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
				continue
			}

			if m := reBullet.FindStringSubmatch(trimmed); m != nil {
				flush()
				addRichText(doc.AddParagraph(""), "• "+m[1])
				continue
			}

			para = append(para, trimmed)
		}
		flush()
	}

	return doc.SaveTo(outputPath)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return titleSize
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(textColor)
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color(textColor)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(textColor).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
