package reports

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/report.html
var reportPageHTML string

var reportPage = template.Must(template.New("report").Parse(reportPageHTML))

// Raw HTML in model output is dropped because WithUnsafe is not set.
var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

type pageData struct {
	DocumentName string
	UserEmail    string
	GeneratedAt  string
	Body         template.HTML
}

func renderHTML(in Input) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(buildMarkdown(in)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err := reportPage.Execute(&out, pageData{
		DocumentName: in.DocumentName,
		UserEmail:    in.UserEmail,
		GeneratedAt:  in.GeneratedAt.UTC().Format(time.RFC1123),
		Body:         template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render report page: %w", err)
	}
	return out.Bytes(), nil
}

func buildMarkdown(in Input) string {
	var b strings.Builder
	summary := summarize(in.Results)

	fmt.Fprintf(&b, "# Document Analysis Report\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Document | %s |\n", cell(in.DocumentName))
	fmt.Fprintf(&b, "| Analysis date | %s |\n", cell(in.AnalysisDate))
	fmt.Fprintf(&b, "| Analysis type | %s |\n", cell(displayType(in.AnalysisType)))
	fmt.Fprintf(&b, "| Contradictions | %d |\n", summary.ContradictionsCount)
	fmt.Fprintf(&b, "| Inconsistencies | %d |\n", summary.InconsistenciesCount)
	fmt.Fprintf(&b, "| Confidence | %s |\n\n", percent(summary.ConfidenceScore))

	fmt.Fprintf(&b, "## Summary\n\n%s\n\n", escapeMarkdown(in.Results.Summary))

	fmt.Fprintf(&b, "## Contradictions\n\n")
	if len(in.Results.Contradictions) == 0 {
		b.WriteString("No contradictions found.\n\n")
	}
	for i, c := range in.Results.Contradictions {
		fmt.Fprintf(&b, "### %d. %s severity (%s confidence)\n\n", i+1, displayType(c.Severity), percent(c.Confidence))
		fmt.Fprintf(&b, "> %s\n\n*%s*\n\n", escapeMarkdown(c.Statement1), escapeMarkdown(c.Location1))
		fmt.Fprintf(&b, "> %s\n\n*%s*\n\n", escapeMarkdown(c.Statement2), escapeMarkdown(c.Location2))
		fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(c.Explanation))
	}

	fmt.Fprintf(&b, "## Inconsistencies\n\n")
	if len(in.Results.Inconsistencies) == 0 {
		b.WriteString("No inconsistencies found.\n\n")
	}
	for i, inc := range in.Results.Inconsistencies {
		fmt.Fprintf(&b, "### %d. %s (%s, %s severity)\n\n", i+1, escapeMarkdown(inc.Issue), displayType(inc.Type), inc.Severity)
		fmt.Fprintf(&b, "- **Location:** %s\n", escapeMarkdown(inc.Location))
		fmt.Fprintf(&b, "- **Suggestion:** %s\n\n", escapeMarkdown(inc.Suggestion))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"#", `\#`,
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
	"|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}

func cell(s string) string {
	return strings.ReplaceAll(escapeMarkdown(s), "\n", " ")
}
