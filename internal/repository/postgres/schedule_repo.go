package postgres

import (
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo creates a gorm backed repository.ScheduleRepository.
func NewScheduleRepo(db *gorm.DB) repository.ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *domain.Schedule) (string, error) {
	if schedule.UserID == "" || schedule.TrainerID == "" {
		return "", errors.New("schedule requires userId and trainerId")
	}

	schedule.ID = uuid.NewString()
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	row := scheduleRowFrom(schedule)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return schedule.ID, nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	var row scheduleRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	schedule := row.toDomain()
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, filter repository.ScheduleFilter) ([]domain.Schedule, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filtered(ctx, filter).
		Order("date DESC").
		Order("start_time DESC").
		Order("id ASC").
		Offset(int(filter.Skip))
	if filter.Limit > 0 {
		query = query.Limit(int(filter.Limit))
	}

	var rows []scheduleRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	schedules := make([]domain.Schedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, row.toDomain())
	}
	return schedules, total, nil
}

func (r *scheduleRepo) filtered(ctx context.Context, filter repository.ScheduleFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&scheduleRow{})
	if filter.Search != "" {
		db = db.Where("LOWER(schedule_subject) LIKE ?", containsPattern(filter.Search))
	}
	if filter.TrainerID != "" {
		db = db.Where("trainer_id = ?", filter.TrainerID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	return db
}

// Update writes the editable fields of schedule and refreshes UpdatedAt.
func (r *scheduleRepo) Update(ctx context.Context, schedule *domain.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	return r.updateByID(ctx, schedule.ID, map[string]interface{}{
		"date":                 schedule.Date,
		"start_time":           schedule.StartTime,
		"end_time":             schedule.EndTime,
		"schedule_subject":     schedule.ScheduleSubject,
		"schedule_description": schedule.ScheduleDescription,
		"updated_at":           schedule.UpdatedAt,
	})
}

func (r *scheduleRepo) SetLink(ctx context.Context, id, link string) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"schedule_link": link,
		"updated_at":    time.Now().UTC(),
	})
}

func (r *scheduleRepo) updateByID(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&scheduleRow{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the schedule. Its notifications go with it through the foreign key.
func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&scheduleRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *scheduleRepo) MarkCompleted(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&scheduleRow{}).
		Where("end_time < ? AND status <> ?", now, string(domain.ScheduleStatusCompleted)).
		Updates(map[string]interface{}{
			"status":     string(domain.ScheduleStatusCompleted),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
