package extract

import "errors"

var (
	// ErrNotFound means the document does not exist or belongs to someone else.
	ErrNotFound = errors.New("document not found")
	// ErrStorage wraps blob retrieval failures.
	ErrStorage = errors.New("failed to download document")
	// ErrExtraction wraps parser failures and unreadable content.
	ErrExtraction = errors.New("failed to extract text")
	// ErrUnsupportedType is matched by *UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// UnsupportedTypeError reports a MIME type with no extractor.
type UnsupportedTypeError struct {
	MimeType string
}

func (e *UnsupportedTypeError) Error() string {
	return "Unsupported file type: " + e.MimeType
}

// Is lets errors.Is(err, ErrUnsupportedType) match.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// ExtractionError carries a user-facing reason for a failed parse.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrExtraction) match.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
