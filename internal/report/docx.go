package report

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	docxFont     = "Arial"
	docxBodySize = 12
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBullet  = regexp.MustCompile(`^-\s+(.+)$`)
)

// writeDocx renders the report body (the same lightweight markdown the
// text rendition uses) into a styled docx.
func writeDocx(title, body, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRun(doc.AddParagraph(""), "• "+m[1], false, docxBodySize)
			continue
		}
		addRun(doc.AddParagraph(""), trimmed, false, docxBodySize)
	}

	return doc.SaveTo(path)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 13
	default:
		return docxBodySize
	}
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
