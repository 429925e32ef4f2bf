package postgres

import (
	"context"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a gorm backed repository.NotificationRepository.
func NewNotificationRepo(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *domain.Notification) (string, error) {
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now().UTC()

	row := notificationRow{
		ID:         notification.ID,
		Message:    notification.Message,
		ScheduleID: notification.ScheduleID,
		UserID:     notification.UserID,
		TrainerID:  notification.TrainerID,
		CreatedAt:  notification.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return notification.ID, nil
}

func (r *notificationRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Notification, error) {
	var rows []notificationRow
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toDomain())
	}
	return notifications, nil
}

func (r *notificationRepo) DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("schedule_id = ?", scheduleID).Delete(&notificationRow{})
	return result.RowsAffected, result.Error
}
