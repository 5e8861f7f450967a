package reports

import (
	"encoding/json"

	"docaudit-backend/internal/analyses"
)

type jsonReport struct {
	Metadata Metadata        `json:"metadata"`
	Summary  Summary         `json:"summary"`
	Results  analyses.Result `json:"results"`
}

func renderJSON(in Input) ([]byte, error) {
	return json.MarshalIndent(jsonReport{
		Metadata: Metadata{
			DocumentName: in.DocumentName,
			AnalysisDate: in.AnalysisDate,
			AnalysisType: in.AnalysisType,
			UserEmail:    in.UserEmail,
			GeneratedAt:  in.GeneratedAt,
		},
		Summary: summarize(in.Results),
		Results: in.Results,
	}, "", "  ")
}
