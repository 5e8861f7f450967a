package analyses

import (
	"context"
	"errors"
	"strings"

	"docaudit-backend/internal/extract"
)

var (
	ErrNotFound        = errors.New("analysis not found")
	ErrAlreadyFinished = errors.New("analysis already finished")
	ErrInvalidInput    = errors.New("invalid analysis request")
	ErrEmptyDocument   = errors.New("document appears to be empty or unreadable")
	ErrAIService       = errors.New("AI service error")
	ErrAITimeout       = errors.New("AI analysis timed out")
	ErrParse           = errors.New("failed to parse AI analysis results")
)

// AIServiceError wraps a transport failure from the model endpoint.
type AIServiceError struct {
	Err error
}

func (e *AIServiceError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return "AI analysis failed: " + msg
}

func (e *AIServiceError) Unwrap() error { return e.Err }

func (e *AIServiceError) Is(target error) bool {
	return target == ErrAIService
}

// Job error codes.
const (
	ErrorCodeExtraction      = "EXTRACTION_ERROR"
	ErrorCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrorCodeStorage         = "STORAGE_ERROR"
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeAIService       = "AI_SERVICE_ERROR"
	ErrorCodeAITimeout       = "AI_TIMEOUT"
	ErrorCodeParse           = "PARSE_ERROR"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)

const (
	msgEmptyDocument = "Document appears to be empty or unreadable"
	msgNotFound      = "Document not found"
	msgStorage       = "Failed to download document"
	msgTimeout       = "AI analysis timed out"
	msgParse         = "Failed to parse AI analysis results"
	msgInternal      = "Analysis failed"
)

// classifyFailure maps a pipeline error to a job error code and the message stored on the job.
func classifyFailure(err error) (string, string) {
	var (
		aiErr          *AIServiceError
		extractionErr  *extract.ExtractionError
		unsupportedErr *extract.UnsupportedTypeError
	)
	switch {
	case err == nil:
		return ErrorCodeInternal, msgInternal
	case errors.Is(err, ErrEmptyDocument):
		return ErrorCodeExtraction, msgEmptyDocument
	case errors.As(err, &unsupportedErr):
		return ErrorCodeUnsupportedType, sanitizeError(unsupportedErr.Error())
	case errors.As(err, &extractionErr):
		return ErrorCodeExtraction, sanitizeError(extractionErr.Reason)
	case errors.Is(err, extract.ErrExtraction):
		return ErrorCodeExtraction, sanitizeError(err.Error())
	case errors.Is(err, extract.ErrNotFound):
		return ErrorCodeNotFound, msgNotFound
	case errors.Is(err, extract.ErrStorage):
		return ErrorCodeStorage, msgStorage
	case errors.Is(err, ErrAITimeout):
		return ErrorCodeAITimeout, msgTimeout
	case errors.Is(err, ErrParse):
		return ErrorCodeParse, msgParse
	case errors.As(err, &aiErr):
		return ErrorCodeAIService, sanitizeError(aiErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeAITimeout, msgTimeout
	default:
		return ErrorCodeInternal, sanitizeError(err.Error())
	}
}

const maxErrorMessageLen = 500

func sanitizeError(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	if len(msg) > maxErrorMessageLen {
		msg = strings.ToValidUTF8(msg[:maxErrorMessageLen], "")
	}
	return msg
}
