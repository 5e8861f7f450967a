package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docaudit-backend/internal/extract"
	"docaudit-backend/internal/llm"
	"docaudit-backend/internal/shared/metrics"
	"docaudit-backend/internal/shared/telemetry"
	"docaudit-backend/internal/usage"
)

// minTextLen is the shortest trimmed text worth sending to the model.
const minTextLen = 50

// TextExtractor turns a stored document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, documentID, ownerID string) (string, error)
}

// QuotaGate reserves and releases analyses against the user's plan.
type QuotaGate interface {
	CheckAndReserve(ctx context.Context, userID string) (usage.Counter, error)
	Release(ctx context.Context, userID string) error
}

// Analyzer runs a prompt through the model and returns a parsed Result.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (Result, error)
}

// Service orchestrates extraction, model calls, persistence and usage accounting.
type Service struct {
	Repo             Repo
	Documents        extract.DocumentLookup
	Extractor        TextExtractor
	Quota            QuotaGate
	AI               Analyzer
	Model            string
	ComparisonPolicy ComparisonQuotaPolicy
	Logger           *zap.Logger
	Now              func() time.Time
}

// AnalyzeRequest asks for a single-document analysis.
type AnalyzeRequest struct {
	UserID       string
	DocumentID   string
	AnalysisType string
}

// CompareRequest asks for a cross-document comparison.
type CompareRequest struct {
	UserID      string
	DocumentIDs [2]string
	Names       [2]string
}

// Analyze runs the full single-document pipeline. Failures after the job row
// exists are reported through the returned job, which ends up failed.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (Job, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.DocumentID) == "" {
		return Job{}, fmt.Errorf("%w: userID and documentID are required", ErrInvalidInput)
	}
	analysisType, err := ParseAnalysisType(req.AnalysisType)
	if err != nil {
		return Job{}, err
	}
	if err := s.checkOwnership(ctx, req.UserID, req.DocumentID); err != nil {
		return Job{}, err
	}

	if _, err := s.Quota.CheckAndReserve(ctx, req.UserID); err != nil {
		if errors.Is(err, usage.ErrQuotaExceeded) {
			metrics.IncQuotaRejected()
		}
		return Job{}, err
	}

	now := s.now()
	documentID := req.DocumentID
	job := Job{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		DocumentID:   &documentID,
		Status:       StatusProcessing,
		AnalysisType: analysisType,
		Model:        s.Model,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		s.release(ctx, req.UserID, job.ID)
		return Job{}, fmt.Errorf("create analysis job: %w", err)
	}
	metrics.IncAnalysisStarted()
	s.logTransition(ctx, job, "->processing", 0)

	result, err := s.run(ctx, req, analysisType)
	if err != nil {
		return s.fail(ctx, job, err)
	}
	return s.complete(ctx, job, result)
}

// checkOwnership rejects a document the caller does not own before any quota
// or job row is spent on it.
func (s *Service) checkOwnership(ctx context.Context, userID, documentID string) error {
	if s.Documents == nil {
		return nil
	}
	if _, err := s.Documents.LookupDocument(ctx, userID, documentID); err != nil {
		if errors.Is(err, extract.ErrNotFound) {
			return err
		}
		return fmt.Errorf("lookup document: %w", err)
	}
	return nil
}

func (s *Service) run(ctx context.Context, req AnalyzeRequest, analysisType string) (Result, error) {
	text, err := s.Extractor.ExtractText(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return Result{}, err
	}
	if len(strings.TrimSpace(text)) < minTextLen {
		return Result{}, ErrEmptyDocument
	}
	return s.AI.Analyze(ctx, llm.BuildPrompt(text, analysisType))
}

func (s *Service) complete(ctx context.Context, job Job, result Result) (Job, error) {
	ms := result.ProcessingTimeMs
	finished, err := s.Repo.Finish(context.WithoutCancel(ctx), job.ID, Outcome{
		Status:           StatusCompleted,
		Results:          &result,
		ProcessingTimeMs: &ms,
	})
	if err != nil {
		s.logger().Error("analysis.finish_failed",
			zap.String("analysis_id", job.ID),
			zap.String("user_id", job.UserID),
			zap.Error(err),
		)
		return job, fmt.Errorf("complete analysis job: %w", err)
	}
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(ms))
	s.logTransition(ctx, finished, "processing->completed", ms)
	return finished, nil
}

func (s *Service) fail(ctx context.Context, job Job, cause error) (Job, error) {
	code, msg := classifyFailure(cause)
	elapsed := int(s.now().Sub(job.CreatedAt).Milliseconds())
	detached := context.WithoutCancel(ctx)

	finished, err := s.Repo.Finish(detached, job.ID, Outcome{
		Status:           StatusFailed,
		ErrorCode:        &code,
		ErrorMessage:     &msg,
		ProcessingTimeMs: &elapsed,
	})
	s.release(detached, job.UserID, job.ID)
	if err != nil {
		s.logger().Error("analysis.finish_failed",
			zap.String("analysis_id", job.ID),
			zap.String("user_id", job.UserID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return job, fmt.Errorf("fail analysis job: %w", err)
	}

	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(float64(elapsed))
	s.logTransition(ctx, finished, "processing->failed", elapsed,
		zap.String("error_code", code),
		zap.NamedError("cause", cause),
	)
	return finished, nil
}

func (s *Service) release(ctx context.Context, userID, jobID string) {
	if err := s.Quota.Release(ctx, userID); err != nil {
		s.logger().Error("usage.release_failed",
			zap.String("analysis_id", jobID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// Compare analyzes two documents against each other. The job row is written
// only after the model call succeeds.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (Job, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.DocumentIDs[0]) == "" || strings.TrimSpace(req.DocumentIDs[1]) == "" {
		return Job{}, fmt.Errorf("%w: two document ids are required", ErrInvalidInput)
	}

	metered := s.ComparisonPolicy == ComparisonMetered
	if metered {
		if _, err := s.Quota.CheckAndReserve(ctx, req.UserID); err != nil {
			if errors.Is(err, usage.ErrQuotaExceeded) {
				metrics.IncQuotaRejected()
			}
			return Job{}, err
		}
	}

	job, err := s.compare(ctx, req)
	if err != nil && metered {
		s.release(context.WithoutCancel(ctx), req.UserID, "")
	}
	return job, err
}

func (s *Service) compare(ctx context.Context, req CompareRequest) (job Job, err error) {
	started := s.now()
	metrics.IncAnalysisStarted()
	defer func() {
		if err != nil {
			metrics.IncAnalysisFailed()
			metrics.ObserveAnalysisDurationMs(float64(s.now().Sub(started).Milliseconds()))
			s.logger().Warn("analysis.comparison_failed",
				zap.String("request_id", telemetry.RequestIDFromContext(ctx)),
				zap.String("user_id", req.UserID),
				zap.Error(err),
			)
		}
	}()
	texts := make([]string, len(req.DocumentIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range req.DocumentIDs {
		g.Go(func() error {
			text, err := s.Extractor.ExtractText(gctx, id, req.UserID)
			if err != nil {
				return fmt.Errorf("extract document %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Job{}, err
	}

	docs := make([]llm.LabeledText, len(texts))
	for i, text := range texts {
		if len(strings.TrimSpace(text)) < minTextLen {
			return Job{}, fmt.Errorf("document %d: %w", i+1, ErrEmptyDocument)
		}
		name := strings.TrimSpace(req.Names[i])
		if name == "" {
			name = fmt.Sprintf("Document %d", i+1)
		}
		docs[i] = llm.LabeledText{Label: fmt.Sprintf("Document %d", i+1), FileName: name, Text: text}
	}

	result, err := s.AI.Analyze(ctx, llm.BuildComparisonPrompt(docs))
	if err != nil {
		return Job{}, err
	}

	now := s.now()
	first := req.DocumentIDs[0]
	ms := result.ProcessingTimeMs
	job = Job{
		ID:                  uuid.NewString(),
		UserID:              req.UserID,
		DocumentID:          &first,
		ComparedDocumentIDs: []string{req.DocumentIDs[0], req.DocumentIDs[1]},
		Status:              StatusCompleted,
		AnalysisType:        TypeComparison,
		Model:               s.Model,
		Results:             &result,
		ProcessingTimeMs:    &ms,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.Repo.Create(context.WithoutCancel(ctx), job); err != nil {
		return Job{}, fmt.Errorf("persist comparison job: %w", err)
	}
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(now.Sub(started).Milliseconds()))
	s.logTransition(ctx, job, "->completed", ms)
	return job, nil
}

// Get returns a job owned by userID.
func (s *Service) Get(ctx context.Context, userID, jobID string) (Job, error) {
	if userID == "" || jobID == "" {
		return Job{}, fmt.Errorf("%w: userID and jobID are required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, jobID)
}

// List returns jobs for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) logTransition(ctx context.Context, job Job, transition string, durationMs int, extra ...zap.Field) {
	fields := []zap.Field{
		zap.String("request_id", telemetry.RequestIDFromContext(ctx)),
		zap.String("user_id", job.UserID),
		zap.String("analysis_id", job.ID),
		zap.String("analysis_type", job.AnalysisType),
		zap.String("status", job.Status),
		zap.String("status_transition", transition),
	}
	if job.DocumentID != nil {
		fields = append(fields, zap.String("document_id", *job.DocumentID))
	}
	if durationMs > 0 {
		fields = append(fields, zap.Int("duration_ms", durationMs))
	}
	s.logger().Info("analysis.status", append(fields, extra...)...)
}

func (s *Service) logger() *zap.Logger {
	return telemetry.Or(s.Logger)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
