package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 15.0
	pdfLineHeight = 6.0
)

func renderPDF(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Analysis Report - "+in.DocumentName, true)
	pdf.SetAuthor("docaudit", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	heading := func(text string, size float64) {
		pdf.SetFont("Helvetica", "B", size)
		pdf.MultiCell(0, size*0.5, tr(text), "", "L", false)
		pdf.Ln(2)
	}
	para := func(style, text string) {
		pdf.SetFont("Helvetica", style, 10)
		pdf.MultiCell(0, pdfLineHeight, tr(text), "", "L", false)
	}

	summary := summarize(in.Results)
	heading("Document Analysis Report", 18)
	para("", "Document: "+in.DocumentName)
	para("", "Analysis date: "+in.AnalysisDate)
	para("", "Analysis type: "+displayType(in.AnalysisType))
	para("", "Prepared for: "+in.UserEmail)
	para("", "Generated: "+in.GeneratedAt.UTC().Format(time.RFC1123))
	pdf.Ln(4)

	heading("Summary", 14)
	para("", fmt.Sprintf("Contradictions: %d    Inconsistencies: %d    Confidence: %s",
		summary.ContradictionsCount, summary.InconsistenciesCount, percent(summary.ConfidenceScore)))
	pdf.Ln(1)
	para("", in.Results.Summary)
	pdf.Ln(4)

	heading("Contradictions", 14)
	if len(in.Results.Contradictions) == 0 {
		para("I", "No contradictions found.")
	}
	for i, c := range in.Results.Contradictions {
		para("B", fmt.Sprintf("%d. %s severity (%s confidence)", i+1, displayType(c.Severity), percent(c.Confidence)))
		para("", fmt.Sprintf("\"%s\" (%s)", c.Statement1, c.Location1))
		para("", fmt.Sprintf("\"%s\" (%s)", c.Statement2, c.Location2))
		para("I", c.Explanation)
		pdf.Ln(3)
	}
	pdf.Ln(2)

	heading("Inconsistencies", 14)
	if len(in.Results.Inconsistencies) == 0 {
		para("I", "No inconsistencies found.")
	}
	for i, inc := range in.Results.Inconsistencies {
		para("B", fmt.Sprintf("%d. %s (%s, %s severity)", i+1, inc.Issue, displayType(inc.Type), inc.Severity))
		para("", "Location: "+inc.Location)
		para("", "Suggestion: "+inc.Suggestion)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
