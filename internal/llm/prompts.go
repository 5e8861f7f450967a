package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/analysis.tmpl
var analysisTemplateText string

var analysisTemplate = template.Must(template.New("analysis").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(analysisTemplateText))

// Analysis types accepted by BuildPrompt.
const (
	TypeContradiction = "contradiction"
	TypeConsistency   = "consistency"
	TypeFactCheck     = "fact_check"
)

var focusByType = map[string]string{
	TypeConsistency: "Give particular attention to inconsistencies: terminology, formatting of facts, and details that drift between sections.",
	TypeFactCheck:   "Give particular attention to factual claims: names, dates, figures, and statements that can be checked against each other.",
}

// LabeledText is one document in a comparison prompt.
type LabeledText struct {
	Label    string
	FileName string
	Text     string
}

type promptData struct {
	Text       string
	Focus      string
	Comparison bool
	Labels     []string
}

// BuildPrompt renders the single-document analysis prompt.
func BuildPrompt(text, analysisType string) string {
	return render(promptData{Text: text, Focus: focusByType[analysisType]})
}

// BuildComparisonPrompt renders a cross-document prompt. Empty labels default to "Document N".
func BuildComparisonPrompt(docs []LabeledText) string {
	var combined strings.Builder
	labels := make([]string, 0, len(docs))
	for i, doc := range docs {
		label := strings.TrimSpace(doc.Label)
		if label == "" {
			label = fmt.Sprintf("Document %d", i+1)
		}
		labels = append(labels, label)

		name := strings.TrimSpace(doc.FileName)
		if name == "" {
			name = label
		}
		if i > 0 {
			combined.WriteString("\n\n")
		}
		fmt.Fprintf(&combined, "%s (Filename: %s):\n---\n%s\n---", label, name, doc.Text)
	}
	return render(promptData{Text: combined.String(), Comparison: true, Labels: labels})
}

func render(data promptData) string {
	var b strings.Builder
	if err := analysisTemplate.Execute(&b, data); err != nil {
		// Only reachable if the embedded template is broken.
		panic(fmt.Sprintf("render analysis prompt: %v", err))
	}
	return b.String()
}
