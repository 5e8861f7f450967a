package analyses

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	defaultSummary    = "Analysis completed"
	defaultConfidence = 0.5
)

type wireResult struct {
	Contradictions  []wireContradiction `json:"contradictions"`
	Inconsistencies []wireInconsistency `json:"inconsistencies"`
	Summary         looseString         `json:"summary"`
	ConfidenceScore looseFloat          `json:"confidence_score"`
}

type wireContradiction struct {
	ID          looseString `json:"id"`
	Statement1  looseString `json:"statement1"`
	Statement2  looseString `json:"statement2"`
	Location1   looseString `json:"location1"`
	Location2   looseString `json:"location2"`
	Severity    looseString `json:"severity"`
	Explanation looseString `json:"explanation"`
	Confidence  looseFloat  `json:"confidence"`
}

type wireInconsistency struct {
	ID         looseString `json:"id"`
	Issue      looseString `json:"issue"`
	Location   looseString `json:"location"`
	Suggestion looseString `json:"suggestion"`
	Type       looseString `json:"type"`
	Severity   looseString `json:"severity"`
}

// looseString accepts any JSON scalar. Numbers and booleans keep their literal text.
type looseString struct {
	value string
	set   bool
}

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = looseString{value: t, set: true}
	case float64:
		*s = looseString{value: strconv.FormatFloat(t, 'f', -1, 64), set: true}
	case bool:
		*s = looseString{value: strconv.FormatBool(t), set: true}
	default:
		*s = looseString{}
	}
	return nil
}

// looseFloat accepts a number or a numeric string. Anything else stays unset.
type looseFloat struct {
	value float64
	set   bool
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = looseFloat{}
	switch t := v.(type) {
	case float64:
		*f = looseFloat{value: t, set: true}
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			*f = looseFloat{value: n, set: true}
		}
	}
	return nil
}

// ParseResult extracts, validates and normalizes the JSON object in a model response.
func ParseResult(raw string) (Result, error) {
	payload, ok := jsonSpan(stripCodeFences(raw))
	if !ok {
		return Result{}, fmt.Errorf("%w: no JSON object in response", ErrParse)
	}

	var generic any
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := validateResultShape(generic); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return normalize(wire), nil
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func jsonSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func normalize(w wireResult) Result {
	out := Result{
		Contradictions:  make([]Contradiction, 0, len(w.Contradictions)),
		Inconsistencies: make([]Inconsistency, 0, len(w.Inconsistencies)),
		Summary:         orDefault(w.Summary, defaultSummary),
		ConfidenceScore: confidenceOrDefault(w.ConfidenceScore),
	}

	for i, c := range w.Contradictions {
		out.Contradictions = append(out.Contradictions, Contradiction{
			ID:          orDefault(c.ID, fmt.Sprintf("contradiction_%d", i)),
			Statement1:  orDefault(c.Statement1, ""),
			Statement2:  orDefault(c.Statement2, ""),
			Location1:   orDefault(c.Location1, ""),
			Location2:   orDefault(c.Location2, ""),
			Severity:    normalizeSeverity(c.Severity),
			Explanation: orDefault(c.Explanation, ""),
			Confidence:  confidenceOrDefault(c.Confidence),
		})
	}
	for i, inc := range w.Inconsistencies {
		out.Inconsistencies = append(out.Inconsistencies, Inconsistency{
			ID:         orDefault(inc.ID, fmt.Sprintf("inconsistency_%d", i)),
			Issue:      orDefault(inc.Issue, ""),
			Location:   orDefault(inc.Location, ""),
			Suggestion: orDefault(inc.Suggestion, ""),
			Type:       normalizeIssueType(inc.Type),
			Severity:   normalizeSeverity(inc.Severity),
		})
	}
	return out
}

func orDefault(v looseString, fallback string) string {
	if !v.set || strings.TrimSpace(v.value) == "" {
		return fallback
	}
	return v.value
}

func normalizeSeverity(v looseString) string {
	switch s := strings.ToLower(orDefault(v, "")); s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return s
	default:
		return SeverityMedium
	}
}

func normalizeIssueType(v looseString) string {
	switch s := strings.ToLower(orDefault(v, "")); s {
	case IssueFactual, IssueLogical, IssueTemporal, IssueNumerical:
		return s
	default:
		return IssueLogical
	}
}

func confidenceOrDefault(v looseFloat) float64 {
	if !v.set {
		return defaultConfidence
	}
	return clamp01(v.value)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return defaultConfidence
	}
	return math.Max(0, math.Min(1, v))
}
