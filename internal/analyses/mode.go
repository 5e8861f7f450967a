package analyses

import (
	"fmt"
	"strings"

	"docaudit-backend/internal/llm"
)

// TypeComparison marks jobs produced by the two-document flow.
const TypeComparison = "comparison"

// ParseAnalysisType normalizes a requested analysis type. Empty means contradiction.
func ParseAnalysisType(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "":
		return llm.TypeContradiction, nil
	case llm.TypeContradiction, llm.TypeConsistency, llm.TypeFactCheck:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: analysis type %q is invalid", ErrInvalidInput, raw)
	}
}

// ComparisonQuotaPolicy decides whether comparisons consume quota.
type ComparisonQuotaPolicy string

const (
	// ComparisonFree never touches the usage counter.
	ComparisonFree ComparisonQuotaPolicy = "free"
	// ComparisonMetered reserves one analysis and releases it on failure.
	ComparisonMetered ComparisonQuotaPolicy = "metered"
)

// ParseComparisonQuotaPolicy maps a config value to a policy, defaulting to ComparisonFree.
func ParseComparisonQuotaPolicy(raw string) ComparisonQuotaPolicy {
	if strings.EqualFold(strings.TrimSpace(raw), string(ComparisonMetered)) {
		return ComparisonMetered
	}
	return ComparisonFree
}
