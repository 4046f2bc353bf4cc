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

const workoutPlanCollectionName = "workout_plans"

type mongoWorkoutPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutPlanRepository creates a new repository for workout plans.
func NewMongoWorkoutPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoWorkoutPlanRepository{
		collection: db.Collection(workoutPlanCollectionName),
	}
}

func (r *mongoWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) error {
	if plan.UserID == "" || plan.Name == "" {
		return errors.New("plan user ID and name are required")
	}
	plan.ID = newID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

func (r *mongoWorkoutPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	return r.findOne(ctx, bson.M{"_id": id}, nil)
}

// GetByUserID returns every plan of the user, newest first.
func (r *mongoWorkoutPlanRepository) GetByUserID(ctx context.Context, userID string) ([]domain.WorkoutPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.WorkoutPlan](ctx, cursor)
}

// GetActiveByUserID returns the most recently created active plan.
func (r *mongoWorkoutPlanRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.WorkoutPlan, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findOne(ctx, bson.M{"userId": userID, "active": true}, findOptions)
}

func (r *mongoWorkoutPlanRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&plan)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&plan)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// DeactivateAllForUser sets active=false on every plan of the user.
func (r *mongoWorkoutPlanRepository) DeactivateAllForUser(ctx context.Context, userID string) error {
	filter := bson.M{"userId": userID, "active": true}
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureWorkoutPlanIndexes creates indexes for the workout_plans collection.
func EnsureWorkoutPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "active", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
