package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var (
	ErrObjectNotFound       = errors.New("object not found in storage")
	ErrUnsupportedVideoType = errors.New("unsupported video content type")
)

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ObjectExists reports whether the object has been uploaded.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

var videoExtensions = map[string]string{
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/quicktime": "mov",
}

// ExerciseVideoKey builds the object key of an exercise demo video.
// Keys are unique per upload so a replaced video never serves a stale cached copy.
func ExerciseVideoKey(exerciseID, contentType string, now time.Time) (string, error) {
	ext, ok := videoExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedVideoType, contentType)
	}
	return path.Join("exercises", exerciseID, fmt.Sprintf("demo-%d.%s", now.UnixNano(), ext)), nil
}

// BelongsToExercise checks that objectKey was issued for exerciseID.
func BelongsToExercise(objectKey, exerciseID string) bool {
	return strings.HasPrefix(objectKey, path.Join("exercises", exerciseID)+"/")
}
