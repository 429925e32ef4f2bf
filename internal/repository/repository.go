package repository

import (
	"context"
	"fitcoach/admin/internal/domain"
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ScheduleFilter selects a page of schedules.
// Skip and Limit are already clamped by the caller.
type ScheduleFilter struct {
	Search    string // Case-insensitive substring of scheduleSubject; empty matches all
	TrainerID string // Optional: only sessions run by this trainer
	UserID    string // Optional: only sessions of this client
	Skip      int64
	Limit     int64 // 0 means no limit
}

// UserFilter selects users for roster listings.
type UserFilter struct {
	Role      domain.Role
	TrainerID string // Optional: only clients of this trainer
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SetImage(ctx context.Context, id, image string) error
}

// ScheduleRepository defines the interface for interacting with session data.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	// List returns the requested page ordered by date descending, plus the total match count.
	List(ctx context.Context, filter ScheduleFilter) ([]domain.Schedule, int64, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
	SetLink(ctx context.Context, id, link string) error
	Delete(ctx context.Context, id string) error
	// MarkCompleted sets status=completed on every schedule with endTime < now that is not
	// already completed. Returns the number of rows changed.
	MarkCompleted(ctx context.Context, now time.Time) (int64, error)
}

// NotificationRepository defines the interface for the notification write path.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (string, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Notification, error)
	DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error)
}
