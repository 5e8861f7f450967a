package documents

import "errors"

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidInput    = errors.New("invalid document")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds the 10MB limit")
)

const msgUnsupportedType = "Invalid file type. Only PDF, DOCX, DOC, and TXT files are allowed."
