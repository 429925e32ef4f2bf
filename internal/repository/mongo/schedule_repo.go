package mongo

import (
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduleCollectionName = "schedules"

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a new Schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// Create inserts a new schedule. ID and audit timestamps are assigned here.
func (r *mongoScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) (string, error) {
	if schedule.UserID == "" || schedule.TrainerID == "" {
		return "", errors.New("schedule requires userId and trainerId")
	}

	schedule.ID = uuid.NewString()
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, schedule); err != nil {
		return "", err
	}
	return schedule.ID, nil
}

// GetByID retrieves a schedule by its ID.
func (r *mongoScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	var schedule domain.Schedule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// List returns one page of schedules, newest session day first, and the total match count.
func (r *mongoScheduleRepository) List(ctx context.Context, filter repository.ScheduleFilter) ([]domain.Schedule, int64, error) {
	query := scheduleQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	// Secondary sort on _id keeps pages stable for sessions on the same day
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(filter.Skip)
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	schedules := []domain.Schedule{}
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

func scheduleQuery(filter repository.ScheduleFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["scheduleSubject"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	if filter.TrainerID != "" {
		query["trainerId"] = filter.TrainerID
	}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	return query
}

// Update writes the mutable fields of a schedule and refreshes updatedAt.
func (r *mongoScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	if schedule.ID == "" {
		return errors.New("schedule ID is required for update")
	}

	schedule.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"date":                schedule.Date,
			"startTime":           schedule.StartTime,
			"endTime":             schedule.EndTime,
			"scheduleSubject":     schedule.ScheduleSubject,
			"scheduleDescription": schedule.ScheduleDescription,
			"updatedAt":           schedule.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": schedule.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetLink attaches a meeting URL to a schedule.
func (r *mongoScheduleRepository) SetLink(ctx context.Context, id, link string) error {
	update := bson.M{
		"$set": bson.M{
			"scheduleLink": link,
			"updatedAt":    time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete permanently removes a schedule.
func (r *mongoScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkCompleted completes every session that ended before now.
// The filter excludes already-completed rows, so repeated runs change nothing.
func (r *mongoScheduleRepository) MarkCompleted(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"endTime": bson.M{"$lt": now},
		"status":  bson.M{"$ne": domain.ScheduleStatusCompleted},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.ScheduleStatusCompleted,
			"updatedAt": now.UTC(),
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func scheduleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Listing order
			Keys: bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}},
		},
		{
			// Completion sweep predicate
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "endTime", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "date", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
		},
	}
}
