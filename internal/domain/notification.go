package domain

import (
	"time"
)

// Notification is an immutable alert written when a session is changed.
type Notification struct {
	ID         string    `bson:"_id" json:"id"`
	Message    string    `bson:"message" json:"message"`
	ScheduleID string    `bson:"scheduleId" json:"scheduleId"`
	UserID     string    `bson:"userId" json:"userId"`
	TrainerID  string    `bson:"trainerId" json:"trainerId"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
