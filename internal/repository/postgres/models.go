package postgres

import (
	"fitcoach/admin/internal/domain"
	"strings"
	"time"
)

type userRow struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Email          string
	PasswordHash   string
	Role           string
	Status         string
	Image          string
	Specialization string
	TrainerID      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userRow) TableName() string { return "users" }

func userRowFrom(u *domain.User) userRow {
	return userRow{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		Status:         string(u.Status),
		Image:          u.Image,
		Specialization: u.Specialization,
		TrainerID:      u.TrainerID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Role:           domain.Role(r.Role),
		Status:         domain.UserStatus(r.Status),
		Image:          r.Image,
		Specialization: r.Specialization,
		TrainerID:      r.TrainerID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type scheduleRow struct {
	ID                  string `gorm:"primaryKey"`
	Date                time.Time
	StartTime           time.Time
	EndTime             time.Time
	ScheduleSubject     string
	ScheduleDescription string
	ScheduleLink        string
	Status              string
	UserID              string
	TrainerID           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (scheduleRow) TableName() string { return "schedules" }

func scheduleRowFrom(s *domain.Schedule) scheduleRow {
	return scheduleRow{
		ID:                  s.ID,
		Date:                s.Date,
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		ScheduleSubject:     s.ScheduleSubject,
		ScheduleDescription: s.ScheduleDescription,
		ScheduleLink:        s.ScheduleLink,
		Status:              string(s.Status),
		UserID:              s.UserID,
		TrainerID:           s.TrainerID,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func (r scheduleRow) toDomain() domain.Schedule {
	return domain.Schedule{
		ID:                  r.ID,
		Date:                r.Date,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		ScheduleSubject:     r.ScheduleSubject,
		ScheduleDescription: r.ScheduleDescription,
		ScheduleLink:        r.ScheduleLink,
		Status:              domain.ScheduleStatus(r.Status),
		UserID:              r.UserID,
		TrainerID:           r.TrainerID,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type notificationRow struct {
	ID         string `gorm:"primaryKey"`
	Message    string
	ScheduleID string
	UserID     string
	TrainerID  string
	CreatedAt  time.Time
}

func (notificationRow) TableName() string { return "notifications" }

func (r notificationRow) toDomain() domain.Notification {
	return domain.Notification{
		ID:         r.ID,
		Message:    r.Message,
		ScheduleID: r.ScheduleID,
		UserID:     r.UserID,
		TrainerID:  r.TrainerID,
		CreatedAt:  r.CreatedAt,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with wildcards in s escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
