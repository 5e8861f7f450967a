package analyses

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docaudit-backend/internal/extract"
	"docaudit-backend/internal/shared/metrics"
	"docaudit-backend/internal/usage"
)

type fakeExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	errs  map[string]error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, documentID, ownerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[documentID]; err != nil {
		return "", err
	}
	text, ok := f.texts[documentID]
	if !ok {
		return "", extract.ErrNotFound
	}
	return text, nil
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	result  Result
	err     error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, prompt string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return Result{}, f.err
	}
	return f.result, nil
}

type serviceFixture struct {
	svc   *Service
	repo  *MemoryRepo
	quota *usage.Service
	ext   *fakeExtractor
	ai    *fakeAnalyzer
	logs  *observer.ObservedLogs
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	f := &serviceFixture{
		repo:  NewMemoryRepo(),
		quota: usage.NewService(nil),
		ext:   &fakeExtractor{texts: map[string]string{}, errs: map[string]error{}},
		ai: &fakeAnalyzer{result: Result{
			Contradictions:   []Contradiction{{ID: "c1", Severity: SeverityHigh, Confidence: 0.9}},
			Inconsistencies:  []Inconsistency{},
			Summary:          "found one",
			ConfidenceScore:  0.9,
			ProcessingTimeMs: 42,
		}},
		logs: logs,
	}
	f.svc = &Service{
		Repo:      f.repo,
		Extractor: f.ext,
		Quota:     f.quota,
		AI:        f.ai,
		Model:     "gemini-1.5-flash",
		Logger:    zap.New(core),
	}
	return f
}

func usageCount(t *testing.T, quota *usage.Service, userID string) int {
	t.Helper()
	c, err := quota.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	return c.UsageCount
}

func TestAnalyzeSuccess(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["doc-1"] = strings.Repeat("The report states revenue grew. ", 7)[:200]

	job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
	if job.AnalysisType != "contradiction" {
		t.Fatalf("expected default analysis type, got %s", job.AnalysisType)
	}
	if job.Results == nil || job.Results.ConfidenceScore != 0.9 {
		t.Fatalf("expected results with confidence 0.9, got %+v", job.Results)
	}
	if job.ProcessingTimeMs == nil || *job.ProcessingTimeMs != 42 {
		t.Fatalf("expected processing time 42, got %v", job.ProcessingTimeMs)
	}
	if job.Model != "gemini-1.5-flash" {
		t.Fatalf("expected model recorded, got %q", job.Model)
	}
	if got := usageCount(t, f.quota, "user-1"); got != 1 {
		t.Fatalf("expected usage 1, got %d", got)
	}

	stored, err := f.repo.GetByID(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != StatusCompleted {
		t.Fatalf("expected stored job completed, got %s", stored.Status)
	}
	if n := f.logs.FilterMessage("analysis.status").FilterField(zap.String("status_transition", "processing->completed")).Len(); n != 1 {
		t.Fatalf("expected one completed transition log, got %d", n)
	}
}

func TestAnalyzeEmptyDocumentNeverCallsAI(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["doc-1"] = "   too short   "

	job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if f.ai.calls != 0 {
		t.Fatalf("expected no AI calls, got %d", f.ai.calls)
	}
	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.ErrorMessage == nil || *job.ErrorMessage != "Document appears to be empty or unreadable" {
		t.Fatalf("unexpected error message %v", job.ErrorMessage)
	}
	if got := usageCount(t, f.quota, "user-1"); got != 0 {
		t.Fatalf("expected usage released, got %d", got)
	}
}

func TestAnalyzeAIFailureReleasesUsage(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["doc-1"] = strings.Repeat("x", 200)
	f.ai.err = &AIServiceError{Err: errors.New("upstream 503")}

	job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if job.ErrorCode == nil || *job.ErrorCode != ErrorCodeAIService {
		t.Fatalf("expected AI_SERVICE_ERROR, got %v", job.ErrorCode)
	}
	if job.ErrorMessage == nil || *job.ErrorMessage != "AI analysis failed: upstream 503" {
		t.Fatalf("unexpected error message %v", job.ErrorMessage)
	}
	if job.Results != nil {
		t.Fatalf("expected no results on failure")
	}
	if got := usageCount(t, f.quota, "user-1"); got != 0 {
		t.Fatalf("expected usage unchanged, got %d", got)
	}
}

func TestAnalyzeTimeoutClassification(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["doc-1"] = strings.Repeat("x", 200)
	f.svc.AI = NewAIClient(&stubLLM{block: true}, 10*time.Millisecond)

	job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if job.ErrorCode == nil || *job.ErrorCode != ErrorCodeAITimeout {
		t.Fatalf("expected AI_TIMEOUT, got %v", job.ErrorCode)
	}
	if job.ErrorMessage == nil || *job.ErrorMessage != "AI analysis timed out" {
		t.Fatalf("unexpected error message %v", job.ErrorMessage)
	}
}

func TestAnalyzeExtractionFailureCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{name: "unsupported", err: &extract.UnsupportedTypeError{MimeType: "image/png"}, code: ErrorCodeUnsupportedType, message: "Unsupported file type: image/png"},
		{name: "pdf", err: &extract.ExtractionError{Reason: "Failed to extract text from PDF", Err: errors.New("bad xref")}, code: ErrorCodeExtraction, message: "Failed to extract text from PDF"},
		{name: "storage", err: errors.Join(extract.ErrStorage, errors.New("s3 down")), code: ErrorCodeStorage, message: "Failed to download document"},
		{name: "missing", err: extract.ErrNotFound, code: ErrorCodeNotFound, message: "Document not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			f.ext.errs["doc-1"] = tt.err

			job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
			if err != nil {
				t.Fatalf("analyze: %v", err)
			}
			if job.ErrorCode == nil || *job.ErrorCode != tt.code {
				t.Fatalf("expected %s, got %v", tt.code, job.ErrorCode)
			}
			if *job.ErrorMessage != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, *job.ErrorMessage)
			}
		})
	}
}

func TestAnalyzeQuotaExceeded(t *testing.T) {
	f := newServiceFixture(t)
	f.quota = usage.NewService(usage.DefaultPlans().WithOverrides(map[string]int{usage.TierFree: 1}))
	f.svc.Quota = f.quota
	f.ext.texts["doc-1"] = strings.Repeat("x", 200)

	if _, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"}); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
	if !errors.Is(err, usage.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	jobs, err := f.repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected no job for the rejected request, got %d jobs", len(jobs))
	}
}

func TestAnalyzeInvalidType(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1", AnalysisType: "vibes"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFinishIsMonotonic(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["doc-1"] = strings.Repeat("x", 200)

	job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "user-1", DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	msg := "late failure"
	_, err = f.repo.Finish(context.Background(), job.ID, Outcome{Status: StatusFailed, ErrorMessage: &msg})
	if !errors.Is(err, ErrAlreadyFinished) {
		t.Fatalf("expected ErrAlreadyFinished, got %v", err)
	}
	stored, _ := f.repo.GetByID(context.Background(), "user-1", job.ID)
	if stored.Status != StatusCompleted {
		t.Fatalf("terminal state changed to %s", stored.Status)
	}
}

func TestCompareFreePolicy(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["a"] = strings.Repeat("alpha ", 20)
	f.ext.texts["b"] = strings.Repeat("beta ", 20)

	job, err := f.svc.Compare(context.Background(), CompareRequest{
		UserID:      "user-1",
		DocumentIDs: [2]string{"a", "b"},
		Names:       [2]string{"contract.pdf", ""},
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if job.Status != StatusCompleted || job.AnalysisType != TypeComparison {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.DocumentID == nil || *job.DocumentID != "a" {
		t.Fatalf("expected first document id, got %v", job.DocumentID)
	}
	if len(job.ComparedDocumentIDs) != 2 || job.ComparedDocumentIDs[1] != "b" {
		t.Fatalf("unexpected compared ids %v", job.ComparedDocumentIDs)
	}
	if got := usageCount(t, f.quota, "user-1"); got != 0 {
		t.Fatalf("free comparisons must not consume quota, got %d", got)
	}
	prompt := f.ai.prompts[0]
	if !strings.Contains(prompt, "contract.pdf") || !strings.Contains(prompt, "Document 2") {
		t.Fatalf("prompt missing document labels: %s", prompt)
	}
}

func TestCompareMeteredPolicy(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.ComparisonPolicy = ComparisonMetered
	f.ext.texts["a"] = strings.Repeat("alpha ", 20)
	f.ext.texts["b"] = strings.Repeat("beta ", 20)

	if _, err := f.svc.Compare(context.Background(), CompareRequest{UserID: "user-1", DocumentIDs: [2]string{"a", "b"}}); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got := usageCount(t, f.quota, "user-1"); got != 1 {
		t.Fatalf("expected usage 1, got %d", got)
	}

	f.ai.err = ErrAITimeout
	if _, err := f.svc.Compare(context.Background(), CompareRequest{UserID: "user-1", DocumentIDs: [2]string{"a", "b"}}); !errors.Is(err, ErrAITimeout) {
		t.Fatalf("expected ErrAITimeout, got %v", err)
	}
	if got := usageCount(t, f.quota, "user-1"); got != 1 {
		t.Fatalf("expected failed comparison to release, got %d", got)
	}
}

func TestCompareFailureWritesNoJob(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["a"] = strings.Repeat("alpha ", 20)

	_, err := f.svc.Compare(context.Background(), CompareRequest{UserID: "user-1", DocumentIDs: [2]string{"a", "missing"}})
	if !errors.Is(err, extract.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	jobs, _ := f.repo.ListByUser(context.Background(), "user-1", 10, 0)
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
	if f.ai.calls != 0 {
		t.Fatalf("expected no AI calls, got %d", f.ai.calls)
	}
}

func TestSanitizeErrorCaps(t *testing.T) {
	got := sanitizeError("line one\nline two\r" + strings.Repeat("y", 600))
	if strings.ContainsAny(got, "\r\n") {
		t.Fatalf("expected newlines stripped")
	}
	if len(got) != maxErrorMessageLen {
		t.Fatalf("expected %d chars, got %d", maxErrorMessageLen, len(got))
	}
}

type fakeLookup struct {
	owned map[string]string
}

func (f *fakeLookup) LookupDocument(ctx context.Context, ownerID, documentID string) (extract.Source, error) {
	if f.owned[documentID] != ownerID {
		return extract.Source{}, extract.ErrNotFound
	}
	return extract.Source{StorageKey: "k/" + documentID, MimeType: extract.MimeText}, nil
}

func TestAnalyzeForeignDocumentSpendsNothing(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["doc-1"] = strings.Repeat("x", 200)
	f.svc.Documents = &fakeLookup{owned: map[string]string{"doc-1": "owner"}}

	_, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "intruder", DocumentID: "doc-1"})
	if !errors.Is(err, extract.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.ai.calls != 0 {
		t.Fatalf("expected no AI calls, got %d", f.ai.calls)
	}
	if got := usageCount(t, f.quota, "intruder"); got != 0 {
		t.Fatalf("expected usage 0, got %d", got)
	}
	jobs, err := f.repo.ListByUser(context.Background(), "intruder", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no job rows, got %d", len(jobs))
	}

	job, err := f.svc.Analyze(context.Background(), AnalyzeRequest{UserID: "owner", DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyze as owner: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", job.Status)
	}
}

func counterValue(t *testing.T, name string) uint64 {
	t.Helper()
	for _, line := range strings.Split(metrics.Render(), "\n") {
		if rest, ok := strings.CutPrefix(line, name+" "); ok {
			n, err := strconv.ParseUint(rest, 10, 64)
			if err != nil {
				t.Fatalf("parse %s: %v", name, err)
			}
			return n
		}
	}
	t.Fatalf("metric %s not rendered", name)
	return 0
}

func TestCompareRecordsStartedAndFailed(t *testing.T) {
	f := newServiceFixture(t)
	f.ext.texts["a"] = strings.Repeat("alpha ", 20)
	f.ext.texts["b"] = strings.Repeat("beta ", 20)

	started := counterValue(t, "analysis_started_total")
	completed := counterValue(t, "analysis_completed_total")
	failed := counterValue(t, "analysis_failed_total")

	if _, err := f.svc.Compare(context.Background(), CompareRequest{UserID: "user-1", DocumentIDs: [2]string{"a", "b"}}); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if _, err := f.svc.Compare(context.Background(), CompareRequest{UserID: "user-1", DocumentIDs: [2]string{"a", "missing"}}); err == nil {
		t.Fatalf("expected comparison failure")
	}

	if got := counterValue(t, "analysis_started_total") - started; got != 2 {
		t.Fatalf("expected 2 started, got %d", got)
	}
	if got := counterValue(t, "analysis_completed_total") - completed; got != 1 {
		t.Fatalf("expected 1 completed, got %d", got)
	}
	if got := counterValue(t, "analysis_failed_total") - failed; got != 1 {
		t.Fatalf("expected 1 failed, got %d", got)
	}
}
