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

const sessionCollectionName = "workout_sessions"

type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a session. StartedAt is kept when set so seeded history can be backdated.
func (r *mongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) error {
	if session.UserID == "" {
		return errors.New("session user ID is required")
	}
	session.ID = newID()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *mongoWorkoutSessionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *mongoWorkoutSessionRepository) Complete(ctx context.Context, id string, completedAt time.Time, durationMinutes int) error {
	update := bson.M{"$set": bson.M{
		"completedAt":          completedAt.UTC(),
		"totalDurationMinutes": durationMinutes,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUserID returns up to limit sessions, newest started first. limit <= 0 means no limit.
func (r *mongoWorkoutSessionRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.WorkoutSession, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.WorkoutSession](ctx, cursor)
}

// EnsureSessionIndexes creates indexes for the workout_sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
