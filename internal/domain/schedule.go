package domain

import (
	"time"
)

// ScheduleStatus tracks where a coaching session is in its lifecycle.
type ScheduleStatus string

const (
	ScheduleStatusPending ScheduleStatus = "pending"
	// Reserved for an approval workflow; nothing assigns these yet.
	ScheduleStatusWaitingToApproved ScheduleStatus = "waitingToApproved"
	ScheduleStatusUpcoming          ScheduleStatus = "upcoming"
	// Only the completion sweep moves a session here.
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

// Schedule is one bookable session between a client (UserID) and a trainer (TrainerID).
type Schedule struct {
	ID                  string         `bson:"_id" json:"id"`
	Date                time.Time      `bson:"date" json:"date"` // Local midnight of the session day
	StartTime           time.Time      `bson:"startTime" json:"startTime"`
	EndTime             time.Time      `bson:"endTime" json:"endTime"`
	ScheduleSubject     string         `bson:"scheduleSubject" json:"scheduleSubject"`
	ScheduleDescription string         `bson:"scheduleDescription,omitempty" json:"scheduleDescription,omitempty"`
	ScheduleLink        string         `bson:"scheduleLink,omitempty" json:"scheduleLink,omitempty"` // Meeting URL, attached after creation
	Status              ScheduleStatus `bson:"status" json:"status"`
	UserID              string         `bson:"userId" json:"userId"`
	TrainerID           string         `bson:"trainerId" json:"trainerId"`
	CreatedAt           time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Participant is the public projection of a User shown next to a session.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// ScheduleDetails combines a schedule with its client and trainer.
type ScheduleDetails struct {
	Schedule
	User    Participant `json:"user"`
	Trainer Participant `json:"trainer"`
}
