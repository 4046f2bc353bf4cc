package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
	"fittrack/fitness-app/internal/storage"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrValidationFailed    = errors.New("validation failed")
	ErrStorageDisabled     = errors.New("object storage is not configured")
	ErrUploadURLError      = errors.New("could not generate upload URL")
	ErrVideoNotUploaded    = errors.New("video has not been uploaded")
	ErrObjectKeyMismatch   = errors.New("object key was not issued for this exercise")
	ErrUnsupportedVideo    = errors.New("unsupported video content type")
	ErrExerciseNameMissing = fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
)

// ExerciseView is an exercise with a temporary link to its demo video.
type ExerciseView struct {
	domain.Exercise
	VideoURL string `json:"videoUrl,omitempty"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ExerciseService interface {
	ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID string) (*ExerciseView, error)
	CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error)
	// SeedDefaults inserts the default catalog when the catalog is empty and returns how many were added.
	SeedDefaults(ctx context.Context) (int, error)
	RequestVideoUploadURL(ctx context.Context, exerciseID, contentType string) (*UploadURLResponse, error)
	ConfirmVideoUpload(ctx context.Context, exerciseID, objectKey string) (*ExerciseView, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage // nil when object storage is disabled
	now          Clock
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage, clock Clock) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		now:          clockOrDefault(clock),
	}
}

func (s *exerciseService) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	if filter.ExerciseType != "" && !filter.ExerciseType.Valid() {
		return nil, fmt.Errorf("%w: unknown exercise type %q", ErrValidationFailed, filter.ExerciseType)
	}
	exercises, err := s.exerciseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return exercises, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID string) (*ExerciseView, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return s.view(ctx, exercise), nil
}

func (s *exerciseService) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	exercise.Name = strings.TrimSpace(exercise.Name)
	if exercise.Name == "" {
		return nil, ErrExerciseNameMissing
	}
	if exercise.Category == "" {
		return nil, fmt.Errorf("%w: exercise category is required", ErrValidationFailed)
	}
	if exercise.ExerciseType != "" && !exercise.ExerciseType.Valid() {
		return nil, fmt.Errorf("%w: unknown exercise type %q", ErrValidationFailed, exercise.ExerciseType)
	}
	exercise.ExerciseType = exercise.ExerciseType.OrDefault()
	exercise.ID = ""
	exercise.VideoObjectKey = ""

	if err := s.exerciseRepo.Create(ctx, &exercise); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: exercise %q already exists", ErrValidationFailed, exercise.Name)
		}
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exercise.ID)
}

func (s *exerciseService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.exerciseRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	added := 0
	for _, exercise := range DefaultCatalog() {
		exercise := exercise
		if err := s.exerciseRepo.Create(ctx, &exercise); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return added, err
		}
		added++
	}
	log.Infof("seeded %d default exercises", added)
	return added, nil
}

// RequestVideoUploadURL issues a presigned PUT URL for the exercise demo video.
func (s *exerciseService) RequestVideoUploadURL(ctx context.Context, exerciseID, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	objectKey, err := storage.ExerciseVideoKey(exerciseID, contentType, s.now())
	if err != nil {
		return nil, ErrUnsupportedVideo
	}

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmVideoUpload attaches an uploaded object to the exercise and removes the previous video.
func (s *exerciseService) ConfirmVideoUpload(ctx context.Context, exerciseID, objectKey string) (*ExerciseView, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if !storage.BelongsToExercise(objectKey, exerciseID) {
		return nil, ErrObjectKeyMismatch
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	exists, err := s.fileStorage.ObjectExists(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrVideoNotUploaded
	}

	if err := s.exerciseRepo.SetVideoObjectKey(ctx, exerciseID, objectKey); err != nil {
		return nil, err
	}

	if previous := exercise.VideoObjectKey; previous != "" && previous != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			log.Warnf("could not delete replaced video %s of exercise %s: %s", previous, exerciseID, err)
		}
	}
	exercise.VideoObjectKey = objectKey
	return s.view(ctx, exercise), nil
}

func (s *exerciseService) view(ctx context.Context, exercise *domain.Exercise) *ExerciseView {
	v := &ExerciseView{Exercise: *exercise}
	if s.fileStorage == nil || exercise.VideoObjectKey == "" {
		return v
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		log.Warnf("could not sign video URL of exercise %s: %s", exercise.ID, err)
		return v
	}
	v.VideoURL = url
	return v
}
