package mongo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"fittrack/fitness-app/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires every MongoDB-backed repository against db.
func NewStore(db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:            NewMongoUserRepository(db),
		Profiles:         NewMongoProfileRepository(db),
		Exercises:        NewMongoExerciseRepository(db),
		Plans:            NewMongoWorkoutPlanRepository(db),
		Workouts:         NewMongoWorkoutRepository(db),
		WorkoutExercises: NewMongoWorkoutExerciseRepository(db),
		Sessions:         NewMongoWorkoutSessionRepository(db),
		Logs:             NewMongoPerformanceLogRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged only.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:            EnsureUserIndexes,
		exerciseCollectionName:        EnsureExerciseIndexes,
		workoutPlanCollectionName:     EnsureWorkoutPlanIndexes,
		workoutCollectionName:         EnsureWorkoutIndexes,
		workoutExerciseCollectionName: EnsureWorkoutExerciseIndexes,
		sessionCollectionName:         EnsureSessionIndexes,
		performanceLogCollectionName:  EnsurePerformanceLogIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			log.Warnf("failed to create indexes for collection %s: %s", name, err)
		}
	}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
