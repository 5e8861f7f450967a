package reports

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rendered is a report body ready to download.
type Rendered struct {
	Body        []byte
	ContentType string
	Extension   string
}

// ParseType validates a requested report type. Empty means pdf.
func ParseType(raw string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(raw)); t {
	case "":
		return TypePDF, nil
	case TypePDF, TypeJSON, TypeHTML:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
	}
}

// Render produces the report in the requested format.
func Render(in Input, reportType string) (Rendered, error) {
	switch reportType {
	case TypeJSON:
		body, err := renderJSON(in)
		return Rendered{Body: body, ContentType: "application/json", Extension: TypeJSON}, err
	case TypeHTML:
		body, err := renderHTML(in)
		return Rendered{Body: body, ContentType: "text/html; charset=utf-8", Extension: TypeHTML}, err
	case TypePDF:
		body, err := renderPDF(in)
		return Rendered{Body: body, ContentType: "application/pdf", Extension: TypePDF}, err
	default:
		return Rendered{}, fmt.Errorf("%w: %q", ErrInvalidType, reportType)
	}
}

// FileName is the download name for a job's report.
func FileName(jobID, extension string) string {
	return fmt.Sprintf("analysis-report-%s.%s", jobID, extension)
}

func displayType(analysisType string) string {
	words := strings.Fields(strings.ReplaceAll(analysisType, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
