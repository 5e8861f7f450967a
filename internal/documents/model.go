package documents

import "time"

// Upload statuses.
const (
	StatusPending  = "pending"
	StatusUploaded = "uploaded"
	StatusFailed   = "failed"
)

// MaxUploadSize is the largest accepted document.
const MaxUploadSize = 10 << 20 // 10MB

// Document represents an uploaded document owned by a user.
type Document struct {
	ID           string
	UserID       string
	FileName     string
	SizeBytes    int64
	MimeType     string
	StorageKey   string
	UploadStatus string
	CreatedAt    time.Time
}
