package render

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var linkLine = regexp.MustCompile(`^(.*) \((https?://[^\s)]+)\)$`) // text (url)

// WritePDF renders the Markdown outline produced by Markup to a PDF at path.
// Bullet nesting becomes indentation and link lines become clickable. This
// is a printable companion, not a general Markdown layout engine.
func WritePDF(markup string, path string) error {
	pdf := outlinePDF(markup)
	return pdf.OutputFileAndClose(path)
}

func outlinePDF(markup string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so accented titles survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()

	scanner := bufio.NewScanner(strings.NewReader(markup))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		s := strings.TrimSpace(line)
		if s == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			pdf.SetFont("Helvetica", "B", 14)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		if s == "---" || s == "***" {
			y := pdf.GetY() + 2
			pdf.Line(left, y, pageW-right, y)
			pdf.Ln(5)
			continue
		}

		depth := (len(line) - len(strings.TrimLeft(line, " "))) / 2
		text := strings.TrimPrefix(s, "- ")
		pdf.SetLeftMargin(left + float64(depth)*6)
		pdf.SetX(left + float64(depth)*6)

		switch {
		case strings.HasPrefix(text, "**") && strings.HasSuffix(text, "**") && len(text) > 4:
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Write(5, tr(text[2:len(text)-2]))
		case strings.HasPrefix(text, "*") && strings.HasSuffix(text, "*") && len(text) > 2:
			pdf.SetFont("Helvetica", "I", 11)
			pdf.Write(5, tr(text[1:len(text)-1]))
		default:
			if m := linkLine.FindStringSubmatch(text); m != nil {
				pdf.WriteLinkString(5, tr(m[1]), m[2])
			} else {
				pdf.Write(5, tr(text))
			}
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetLeftMargin(left)
		pdf.Ln(6)
	}
	return pdf
}
