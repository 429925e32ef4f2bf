package mongo

import (
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Notification repository backed by MongoDB.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// Create inserts a notification. Notifications are never updated afterwards.
func (r *mongoNotificationRepository) Create(ctx context.Context, notification *domain.Notification) (string, error) {
	if notification.ScheduleID == "" || notification.Message == "" {
		return "", errors.New("notification requires scheduleId and message")
	}

	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return "", err
	}
	return notification.ID, nil
}

// ListBySchedule returns the notifications of a schedule, oldest first.
func (r *mongoNotificationRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"scheduleId": scheduleID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []domain.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// DeleteBySchedule removes every notification that references scheduleID.
func (r *mongoNotificationRepository) DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"scheduleId": scheduleID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func notificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "scheduleId", Value: 1}, {Key: "createdAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}},
		},
	}
}
