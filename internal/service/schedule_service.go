package service

import (
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"fitcoach/admin/internal/storage"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMissingField     = errors.New("missing required fields")
	ErrInvalidInput     = errors.New("invalid input")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrCreateFailed     = errors.New("an error occurred while creating the schedule")
	ErrUpdateFailed     = errors.New("an error occurred while updating the schedule")
	ErrDeleteFailed     = errors.New("an error occurred while deleting the schedule")
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// ListSchedulesInput holds the raw paging query. Non-positive values fall back to defaults.
type ListSchedulesInput struct {
	Page   int
	Limit  int
	Search string
}

// ScheduleList is one page of sessions.
type ScheduleList struct {
	Schedules  []domain.ScheduleDetails `json:"schedules"`
	TotalPages int                      `json:"totalPages"`
	Page       int                      `json:"-"`
	Limit      int                      `json:"-"`
	Total      int64                    `json:"-"`
}

type CreateScheduleInput struct {
	Date                string
	StartTime           string
	EndTime             string
	ScheduleSubject     string
	ScheduleDescription string
	UserID              string
	TrainerID           string
}

// UpdateScheduleInput carries the fields to change; nil leaves a field as it is.
type UpdateScheduleInput struct {
	Date                *string
	StartTime           *string
	EndTime             *string
	ScheduleSubject     *string
	ScheduleDescription *string
}

func (in UpdateScheduleInput) empty() bool {
	return in.Date == nil && in.StartTime == nil && in.EndTime == nil &&
		in.ScheduleSubject == nil && in.ScheduleDescription == nil
}

// ScheduleService manages the lifecycle of coaching sessions.
type ScheduleService interface {
	ListSchedules(ctx context.Context, actor Actor, in ListSchedulesInput) (*ScheduleList, error)
	GetSchedule(ctx context.Context, actor Actor, scheduleID string) (*domain.ScheduleDetails, error)
	CreateSchedule(ctx context.Context, actor Actor, in CreateScheduleInput) (*domain.Schedule, error)
	UpdateSchedule(ctx context.Context, actor Actor, scheduleID string, in UpdateScheduleInput) (*domain.ScheduleDetails, error)
	DeleteSchedule(ctx context.Context, actor Actor, scheduleID string) error
	AttachMeetingLink(ctx context.Context, actor Actor, scheduleID, link string) (*domain.Schedule, error)
	// CompletePastSchedules is the completion sweep. Safe to run concurrently and repeatedly.
	CompletePastSchedules(ctx context.Context) (int64, error)
}

// ScheduleOptions tunes a ScheduleService.
type ScheduleOptions struct {
	Location        *time.Location
	DefaultPageSize int
	MaxPageSize     int
	MeetingBaseURL  string
	Now             func() time.Time // Overridable clock, defaults to time.Now
}

type scheduleService struct {
	scheduleRepo     repository.ScheduleRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	images           imageResolver
	opts             ScheduleOptions
	logger           *zap.Logger
}

// NewScheduleService creates a new instance of scheduleService.
// fileStorage may be nil, in which case participant images are returned as stored.
func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	fileStorage storage.FileStorage,
	opts ScheduleOptions,
	logger *zap.Logger,
) ScheduleService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &scheduleService{
		scheduleRepo:     scheduleRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		images:           imageResolver{storage: fileStorage, logger: logger},
		opts:             opts,
		logger:           logger,
	}
}

func authorizeStaff(actor Actor) error {
	if actor.ID == "" || !domain.HasRole(actor.Role, domain.StaffRoles...) {
		return ErrUnauthorized
	}
	return nil
}

// === Listing ===

// ListSchedules runs the completion sweep and returns one page of sessions.
func (s *scheduleService) ListSchedules(ctx context.Context, actor Actor, in ListSchedulesInput) (*ScheduleList, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}

	page, limit := s.clampPage(in.Page, in.Limit)

	if _, err := s.CompletePastSchedules(ctx); err != nil {
		return nil, err
	}

	schedules, total, err := s.scheduleRepo.List(ctx, repository.ScheduleFilter{
		Search: strings.TrimSpace(in.Search),
		Skip:   int64(page-1) * int64(limit),
		Limit:  int64(limit),
	})
	if err != nil {
		s.logger.Error("failed to list schedules", zap.Error(err))
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	details, err := s.withParticipants(ctx, schedules)
	if err != nil {
		s.logger.Error("failed to load session participants", zap.Error(err))
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	return &ScheduleList{
		Schedules:  details,
		TotalPages: totalPages(total, limit),
		Page:       page,
		Limit:      limit,
		Total:      total,
	}, nil
}

func (s *scheduleService) clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.opts.DefaultPageSize
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// GetSchedule returns a single session with its participants.
func (s *scheduleService) GetSchedule(ctx context.Context, actor Actor, scheduleID string) (*domain.ScheduleDetails, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	details, err := s.withParticipants(ctx, []domain.Schedule{*schedule})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// === Completion sweep ===

func (s *scheduleService) CompletePastSchedules(ctx context.Context) (int64, error) {
	completed, err := s.scheduleRepo.MarkCompleted(ctx, s.opts.Now())
	if err != nil {
		s.logger.Error("completion sweep failed", zap.Error(err))
		return 0, fmt.Errorf("completion sweep: %w", err)
	}
	if completed > 0 {
		s.logger.Info("completed past sessions", zap.Int64("count", completed))
	}
	return completed, nil
}

// === Create ===

// CreateSchedule books a new pending session.
func (s *scheduleService) CreateSchedule(ctx context.Context, actor Actor, in CreateScheduleInput) (*domain.Schedule, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}

	if missing := missingCreateFields(in); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	window, err := NormalizeSessionWindow(in.Date, in.StartTime, in.EndTime, s.opts.Location)
	if err != nil {
		return nil, err
	}

	if err := s.ensureParticipantsExist(ctx, in.UserID, in.TrainerID); err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		Date:                window.Date,
		StartTime:           window.Start,
		EndTime:             window.End,
		ScheduleSubject:     strings.TrimSpace(in.ScheduleSubject),
		ScheduleDescription: strings.TrimSpace(in.ScheduleDescription),
		Status:              domain.ScheduleStatusPending,
		UserID:              in.UserID,
		TrainerID:           in.TrainerID,
		// ID, CreatedAt, UpdatedAt set by repository
	}

	if _, err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		s.logger.Error("failed to create schedule", zap.String("userId", in.UserID), zap.String("trainerId", in.TrainerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	return schedule, nil
}

func missingCreateFields(in CreateScheduleInput) []string {
	required := []struct {
		name  string
		value string
	}{
		{"date", in.Date},
		{"startTime", in.StartTime},
		{"endTime", in.EndTime},
		{"scheduleSubject", in.ScheduleSubject},
		{"userId", in.UserID},
		{"trainerId", in.TrainerID},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s *scheduleService) ensureParticipantsExist(ctx context.Context, userID, trainerID string) error {
	users, err := s.userRepo.GetByIDs(ctx, []string{userID, trainerID})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	found := make(map[string]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	if !found[userID] {
		return fmt.Errorf("%w: user %s does not exist", ErrInvalidInput, userID)
	}
	if !found[trainerID] {
		return fmt.Errorf("%w: trainer %s does not exist", ErrInvalidInput, trainerID)
	}
	return nil
}

// === Update ===

// UpdateSchedule changes a session and records a notification about the change.
func (s *scheduleService) UpdateSchedule(ctx context.Context, actor Actor, scheduleID string, in UpdateScheduleInput) (*domain.ScheduleDetails, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrMissingField)
	}
	if in.ScheduleSubject != nil && strings.TrimSpace(*in.ScheduleSubject) == "" {
		return nil, fmt.Errorf("%w: scheduleSubject", ErrMissingField)
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	// Omitted fields keep their current local value and are normalised again
	loc := s.opts.Location
	date := valueOr(in.Date, schedule.Date.In(loc).Format(DateLayout))
	start := valueOr(in.StartTime, schedule.StartTime.In(loc).Format(ClockLayout))
	end := valueOr(in.EndTime, schedule.EndTime.In(loc).Format(ClockLayout))

	window, err := NormalizeSessionWindow(date, start, end, loc)
	if err != nil {
		return nil, err
	}

	schedule.Date = window.Date
	schedule.StartTime = window.Start
	schedule.EndTime = window.End
	if in.ScheduleSubject != nil {
		schedule.ScheduleSubject = strings.TrimSpace(*in.ScheduleSubject)
	}
	if in.ScheduleDescription != nil {
		schedule.ScheduleDescription = strings.TrimSpace(*in.ScheduleDescription)
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("failed to update schedule", zap.String("scheduleId", scheduleID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	details, err := s.withParticipants(ctx, []domain.Schedule{*schedule})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	updated := &details[0]

	notification := &domain.Notification{
		Message:    updateMessage(updated, loc),
		ScheduleID: schedule.ID,
		UserID:     schedule.UserID,
		TrainerID:  schedule.TrainerID,
	}
	if _, err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("failed to record schedule notification", zap.String("scheduleId", scheduleID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	return updated, nil
}

func valueOr(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}

func updateMessage(d *domain.ScheduleDetails, loc *time.Location) string {
	start := d.StartTime.In(loc)
	return fmt.Sprintf("Schedule updated: %s on %s at %s for %s with trainer %s",
		d.ScheduleSubject,
		start.Format(DateLayout),
		start.Format(ClockLayout),
		d.User.Name,
		d.Trainer.Name,
	)
}

// === Delete ===

// DeleteSchedule removes a session permanently together with its notifications.
func (s *scheduleService) DeleteSchedule(ctx context.Context, actor Actor, scheduleID string) error {
	if err := authorizeStaff(actor); err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("failed to delete schedule", zap.String("scheduleId", scheduleID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	// Orphans are harmless, so a failed cascade does not fail the delete.
	if _, err := s.notificationRepo.DeleteBySchedule(ctx, scheduleID); err != nil {
		s.logger.Warn("failed to delete notifications of schedule", zap.String("scheduleId", scheduleID), zap.Error(err))
	}
	return nil
}

// === Meeting link ===

// AttachMeetingLink sets the session's meeting URL, generating one when link is empty.
func (s *scheduleService) AttachMeetingLink(ctx context.Context, actor Actor, scheduleID, link string) (*domain.Schedule, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}

	link = strings.TrimSpace(link)
	if link == "" {
		link = strings.TrimRight(s.opts.MeetingBaseURL, "/") + "/fitcoach-" + uuid.NewString()
	}
	if u, err := url.ParseRequestURI(link); err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: scheduleLink must be an http(s) URL", ErrInvalidInput)
	}

	if err := s.scheduleRepo.SetLink(ctx, scheduleID, link); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	return schedule, nil
}

// === Helpers ===

// withParticipants attaches client and trainer names and images to each schedule.
func (s *scheduleService) withParticipants(ctx context.Context, schedules []domain.Schedule) ([]domain.ScheduleDetails, error) {
	return attachParticipants(ctx, s.userRepo, s.images, schedules)
}

func attachParticipants(ctx context.Context, userRepo repository.UserRepository, images imageResolver, schedules []domain.Schedule) ([]domain.ScheduleDetails, error) {
	details := make([]domain.ScheduleDetails, len(schedules))
	if len(schedules) == 0 {
		return details, nil
	}

	seen := make(map[string]bool)
	var ids []string
	for _, sc := range schedules {
		for _, id := range []string{sc.UserID, sc.TrainerID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Participant, len(users))
	for _, u := range users {
		byID[u.ID] = domain.Participant{ID: u.ID, Name: u.Name, Image: images.URL(ctx, u.Image)}
	}

	for i, sc := range schedules {
		details[i] = domain.ScheduleDetails{
			Schedule: sc,
			User:     participantOr(byID, sc.UserID),
			Trainer:  participantOr(byID, sc.TrainerID),
		}
	}
	return details, nil
}

func participantOr(byID map[string]domain.Participant, id string) domain.Participant {
	if p, ok := byID[id]; ok {
		return p
	}
	return domain.Participant{ID: id}
}
