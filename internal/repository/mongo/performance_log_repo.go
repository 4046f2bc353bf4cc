package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fittrack/fitness-app/internal/domain"
	"fittrack/fitness-app/internal/repository"
)

const performanceLogCollectionName = "exercise_performance_logs"

type mongoPerformanceLogRepository struct {
	collection *mongo.Collection
}

func NewMongoPerformanceLogRepository(db *mongo.Database) repository.PerformanceLogRepository {
	return &mongoPerformanceLogRepository{
		collection: db.Collection(performanceLogCollectionName),
	}
}

// Upsert writes the log keyed by (sessionId, exerciseId, setNumber).
// An existing row keeps its ID; a new row gets a fresh one.
func (r *mongoPerformanceLogRepository) Upsert(ctx context.Context, entry *domain.ExercisePerformanceLog) error {
	if entry.SessionID == "" || entry.ExerciseID == "" || entry.SetNumber < 1 {
		return errors.New("session ID, exercise ID and a positive set number are required")
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}

	filter := bson.M{
		"sessionId":  entry.SessionID,
		"exerciseId": entry.ExerciseID,
		"setNumber":  entry.SetNumber,
	}

	var existing domain.ExercisePerformanceLog
	err := r.collection.FindOne(ctx, filter).Decode(&existing)
	switch {
	case err == nil:
		entry.ID = existing.ID
	case errors.Is(err, mongo.ErrNoDocuments):
		entry.ID = newID()
	default:
		return err
	}

	_, err = r.collection.ReplaceOne(ctx, filter, entry, options.Replace().SetUpsert(true))
	return err
}

func (r *mongoPerformanceLogRepository) GetBySessionIDs(ctx context.Context, sessionIDs []string) ([]domain.ExercisePerformanceLog, error) {
	if len(sessionIDs) == 0 {
		return []domain.ExercisePerformanceLog{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ExercisePerformanceLog](ctx, cursor)
}

// GetCompletedByExercise returns the completed logs for one exercise across the given sessions.
func (r *mongoPerformanceLogRepository) GetCompletedByExercise(ctx context.Context, sessionIDs []string, exerciseID string) ([]domain.ExercisePerformanceLog, error) {
	if len(sessionIDs) == 0 {
		return []domain.ExercisePerformanceLog{}, nil
	}
	filter := bson.M{
		"sessionId":  bson.M{"$in": sessionIDs},
		"exerciseId": exerciseID,
		"completed":  true,
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ExercisePerformanceLog](ctx, cursor)
}

// EnsurePerformanceLogIndexes creates the unique set key index.
func EnsurePerformanceLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sessionId", Value: 1},
				{Key: "exerciseId", Value: 1},
				{Key: "setNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "exerciseId", Value: 1}, {Key: "completed", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
