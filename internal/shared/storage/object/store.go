package object

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"docaudit-backend/internal/shared/util"
)

// ErrNotFound is returned by Open and Delete when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving, retrieving and deleting binary objects.
type ObjectStore interface {
	Save(ctx context.Context, userID, fileName, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey builds an owner-prefixed key of the form <owner-hash>/<unix-ms>-<random>.<ext>.
func NewKey(userID, fileName string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(sanitized), "."))
	name := fmt.Sprintf("%d-%s", time.Now().UTC().UnixMilli(), randomID())
	if ext != "" {
		name += "." + ext
	}
	return path.Join(util.HashUserKey(userID), name), nil
}

// OwnedBy reports whether key lives under userID's prefix.
func OwnedBy(key, userID string) bool {
	return strings.HasPrefix(strings.TrimLeft(key, "/"), util.HashUserKey(userID)+"/")
}

func randomID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
