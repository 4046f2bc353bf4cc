package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
	"fittrack/fitness-app/internal/repository/memory"
)

type fakeStorage struct {
	objects map[string]bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]bool{}}
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	return "https://bucket.test/put/" + objectKey, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://bucket.test/get/" + objectKey, nil
}

func (f *fakeStorage) ObjectExists(_ context.Context, objectKey string) (bool, error) {
	return f.objects[objectKey], nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	delete(f.objects, objectKey)
	return nil
}

func TestSeedDefaults_OnlyIntoEmptyCatalog(t *testing.T) {
	store := memory.NewStore()
	svc := NewExerciseService(store.Exercises, nil, nil)
	ctx := context.Background()

	added, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCatalog()), added)

	added, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)

	types := map[domain.ExerciseType]bool{}
	all, err := svc.ListExercises(ctx, repository.ExerciseFilter{})
	require.NoError(t, err)
	for _, e := range all {
		types[e.ExerciseType] = true
	}
	assert.Len(t, types, 4, "default catalog covers every exercise type")
}

func TestListExercises_SearchAndFilter(t *testing.T) {
	store := newTestStore(t)
	svc := NewExerciseService(store.Exercises, nil, nil)
	ctx := context.Background()

	all, err := svc.ListExercises(ctx, repository.ExerciseFilter{})
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name, "ordered by name")
	}

	found, err := svc.ListExercises(ctx, repository.ExerciseFilter{Query: "  SQUAT "})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Back Squat", found[0].Name)

	cardio, err := svc.ListExercises(ctx, repository.ExerciseFilter{Query: "cardio"})
	require.NoError(t, err)
	assert.Len(t, cardio, 3, "query matches category too")

	timed, err := svc.ListExercises(ctx, repository.ExerciseFilter{ExerciseType: domain.ExerciseTypeTime})
	require.NoError(t, err)
	for _, e := range timed {
		assert.Equal(t, domain.ExerciseTypeTime, e.ExerciseType)
	}

	_, err = svc.ListExercises(ctx, repository.ExerciseFilter{ExerciseType: "swimming"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestCreateExercise(t *testing.T) {
	store := newTestStore(t)
	svc := NewExerciseService(store.Exercises, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateExercise(ctx, domain.Exercise{Name: "Farmer Carry", Category: "full_body"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.ExerciseTypeWeight, created.ExerciseType)

	_, err = svc.CreateExercise(ctx, domain.Exercise{Name: "Farmer Carry", Category: "full_body"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateExercise(ctx, domain.Exercise{Category: "core"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.GetExercise(ctx, "missing")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestVideoUploadFlow(t *testing.T) {
	store := newTestStore(t)
	files := newFakeStorage()
	svc := NewExerciseService(store.Exercises, files, nil)
	ctx := context.Background()
	plank := exerciseByName(t, store, "Plank")

	_, err := svc.RequestVideoUploadURL(ctx, plank.ID, "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedVideo)

	upload, err := svc.RequestVideoUploadURL(ctx, plank.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "exercises/"+plank.ID+"/"))
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".mp4"))
	assert.Contains(t, upload.UploadURL, upload.ObjectKey)

	_, err = svc.ConfirmVideoUpload(ctx, plank.ID, upload.ObjectKey)
	assert.ErrorIs(t, err, ErrVideoNotUploaded)

	files.objects[upload.ObjectKey] = true
	view, err := svc.ConfirmVideoUpload(ctx, plank.ID, upload.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.test/get/"+upload.ObjectKey, view.VideoURL)

	fetched, err := svc.GetExercise(ctx, plank.ID)
	require.NoError(t, err)
	assert.Equal(t, view.VideoURL, fetched.VideoURL)

	// a replacement removes the previous object
	replacement := "exercises/" + plank.ID + "/demo-2.webm"
	files.objects[replacement] = true
	_, err = svc.ConfirmVideoUpload(ctx, plank.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, []string{upload.ObjectKey}, files.deleted)

	squat := exerciseByName(t, store, "Back Squat")
	_, err = svc.ConfirmVideoUpload(ctx, squat.ID, replacement)
	assert.ErrorIs(t, err, ErrObjectKeyMismatch)
}

func TestVideoUpload_StorageDisabled(t *testing.T) {
	store := newTestStore(t)
	svc := NewExerciseService(store.Exercises, nil, nil)
	plank := exerciseByName(t, store, "Plank")

	_, err := svc.RequestVideoUploadURL(context.Background(), plank.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrStorageDisabled)

	view, err := svc.GetExercise(context.Background(), plank.ID)
	require.NoError(t, err)
	assert.Empty(t, view.VideoURL)
}
