package analyses

import "time"

// Job statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is one analysis run over a document or a document pair.
type Job struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	DocumentID          *string   `json:"documentId"`
	ComparedDocumentIDs []string  `json:"comparedDocumentIds,omitempty"`
	Status              string    `json:"status"`
	AnalysisType        string    `json:"analysisType"`
	Model               string    `json:"model"`
	Results             *Result   `json:"results,omitempty"`
	ErrorCode           *string   `json:"errorCode,omitempty"`
	ErrorMessage        *string   `json:"errorMessage,omitempty"`
	ProcessingTimeMs    *int      `json:"processingTimeMs,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// IsTerminal reports whether the job has reached completed or failed.
func (j Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Result is the validated AI output persisted on a completed job.
type Result struct {
	Contradictions   []Contradiction `json:"contradictions"`
	Inconsistencies  []Inconsistency `json:"inconsistencies"`
	Summary          string          `json:"summary"`
	ConfidenceScore  float64         `json:"confidence_score"`
	ProcessingTimeMs int             `json:"processing_time_ms"`
}

// Contradiction is a pair of statements that cannot both be true.
type Contradiction struct {
	ID          string  `json:"id"`
	Statement1  string  `json:"statement1"`
	Statement2  string  `json:"statement2"`
	Location1   string  `json:"location1"`
	Location2   string  `json:"location2"`
	Severity    string  `json:"severity"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// Inconsistency is a single issue with a suggested fix.
type Inconsistency struct {
	ID         string `json:"id"`
	Issue      string `json:"issue"`
	Location   string `json:"location"`
	Suggestion string `json:"suggestion"`
	Type       string `json:"type"`
	Severity   string `json:"severity"`
}

// Severity and inconsistency type values.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	IssueFactual   = "factual"
	IssueLogical   = "logical"
	IssueTemporal  = "temporal"
	IssueNumerical = "numerical"
)

// Outcome is the terminal state written by Repo.Finish.
type Outcome struct {
	Status           string
	Results          *Result
	ErrorCode        *string
	ErrorMessage     *string
	ProcessingTimeMs *int
}
