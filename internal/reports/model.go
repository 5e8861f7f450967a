package reports

import (
	"time"

	"docaudit-backend/internal/analyses"
)

// Report formats.
const (
	TypePDF  = "pdf"
	TypeJSON = "json"
	TypeHTML = "html"
)

// Report is an immutable record of a generated download.
type Report struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	AnalysisJobID string    `json:"analysisJobId"`
	ReportType    string    `json:"reportType"`
	ReportData    Data      `json:"reportData"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Data is the persisted report summary.
type Data struct {
	Metadata Metadata `json:"metadata"`
	Summary  Summary  `json:"summary"`
}

// Metadata describes what the report covers.
type Metadata struct {
	DocumentName string    `json:"documentName"`
	AnalysisDate string    `json:"analysisDate"`
	AnalysisType string    `json:"analysisType"`
	UserEmail    string    `json:"userEmail"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// Summary holds headline counts from the analysis.
type Summary struct {
	ContradictionsCount  int     `json:"contradictionsCount"`
	InconsistenciesCount int     `json:"inconsistenciesCount"`
	ConfidenceScore      float64 `json:"confidenceScore"`
}

// Input is everything a renderer needs.
type Input struct {
	DocumentName string
	AnalysisDate string
	AnalysisType string
	Results      analyses.Result
	UserEmail    string
	GeneratedAt  time.Time
}

func summarize(results analyses.Result) Summary {
	return Summary{
		ContradictionsCount:  len(results.Contradictions),
		InconsistenciesCount: len(results.Inconsistencies),
		ConfidenceScore:      results.ConfidenceScore,
	}
}
