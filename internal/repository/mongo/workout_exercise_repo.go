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

const workoutExerciseCollectionName = "workout_exercises"

type mongoWorkoutExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutExerciseRepository(db *mongo.Database) repository.WorkoutExerciseRepository {
	return &mongoWorkoutExerciseRepository{
		collection: db.Collection(workoutExerciseCollectionName),
	}
}

func (r *mongoWorkoutExerciseRepository) Create(ctx context.Context, we *domain.WorkoutExercise) error {
	if we.WorkoutID == "" || we.ExerciseID == "" {
		return errors.New("workout ID and exercise ID are required")
	}
	if we.Sets < 1 {
		return errors.New("sets must be at least 1")
	}
	we.ID = newID()
	we.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, we)
	return err
}

// GetByWorkoutID returns the prescriptions of a workout, sorted by order index.
func (r *mongoWorkoutExerciseRepository) GetByWorkoutID(ctx context.Context, workoutID string) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"workoutId": workoutID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.WorkoutExercise](ctx, cursor)
}

// EnsureWorkoutExerciseIndexes creates indexes for the workout_exercises collection.
func EnsureWorkoutExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "orderIndex", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
