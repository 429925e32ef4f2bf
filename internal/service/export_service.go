package service

import (
	"bytes"
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	ErrExportFailed = errors.New("failed to generate export")
)

const (
	exportSheetName = "Schedules"
	calendarProdID  = "-//FitCoach//Admin//EN"
)

var exportHeader = []interface{}{"Date", "Start", "End", "Subject", "Client", "Trainer", "Status", "Link"}

// ExportService renders sessions into downloadable formats.
// Both operations return the file content and a suggested file name.
type ExportService interface {
	ExportSchedules(ctx context.Context, actor Actor, search string) (*bytes.Buffer, string, error)
	// CalendarFeed lists a trainer's own sessions; administrators get every session.
	CalendarFeed(ctx context.Context, actor Actor) (*bytes.Buffer, string, error)
}

type exportService struct {
	scheduleRepo repository.ScheduleRepository
	userRepo     repository.UserRepository
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewExportService creates a new instance of exportService.
func NewExportService(scheduleRepo repository.ScheduleRepository, userRepo repository.UserRepository, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *exportService) load(ctx context.Context, filter repository.ScheduleFilter) ([]domain.ScheduleDetails, error) {
	schedules, _, err := s.scheduleRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to load schedules for export", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	details, err := attachParticipants(ctx, s.userRepo, imageResolver{logger: s.logger}, schedules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return details, nil
}

// ExportSchedules writes every session matching search into an xlsx workbook.
func (s *exportService) ExportSchedules(ctx context.Context, actor Actor, search string) (*bytes.Buffer, string, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, "", err
	}

	details, err := s.load(ctx, repository.ScheduleFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	f.SetColWidth(exportSheetName, "A", "C", 12)
	f.SetColWidth(exportSheetName, "D", "F", 24)
	f.SetColWidth(exportSheetName, "G", "G", 14)
	f.SetColWidth(exportSheetName, "H", "H", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err := f.SetSheetRow(exportSheetName, "A1", &exportHeader); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle)

	for i, d := range details {
		row := []interface{}{
			d.Date.In(s.loc).Format(DateLayout),
			d.StartTime.In(s.loc).Format(ClockLayout),
			d.EndTime.In(s.loc).Format(ClockLayout),
			d.ScheduleSubject,
			d.User.Name,
			d.Trainer.Name,
			string(d.Status),
			d.ScheduleLink,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write workbook", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	filename := fmt.Sprintf("schedules_%s.xlsx", s.now().In(s.loc).Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) CalendarFeed(ctx context.Context, actor Actor) (*bytes.Buffer, string, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, "", err
	}

	filter := repository.ScheduleFilter{}
	if actor.Role == domain.RoleTrainer {
		filter.TrainerID = actor.ID
	}
	details, err := s.load(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProdID)
	cal.SetXWRCalName("FitCoach sessions")

	stamp := s.now().UTC()
	for _, d := range details {
		event := cal.AddEvent(d.ID + "@fitcoach")
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(d.CreatedAt)
		event.SetModifiedAt(d.UpdatedAt)
		event.SetStartAt(d.StartTime)
		event.SetEndAt(d.EndTime)
		event.SetSummary(d.ScheduleSubject)
		event.SetDescription(eventDescription(d))
		if d.ScheduleLink != "" {
			event.SetURL(d.ScheduleLink)
			event.SetLocation(d.ScheduleLink)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "fitcoach-sessions.ics", nil
}

func eventDescription(d domain.ScheduleDetails) string {
	parts := []string{
		"Client: " + d.User.Name,
		"Trainer: " + d.Trainer.Name,
		"Status: " + string(d.Status),
	}
	if d.ScheduleDescription != "" {
		parts = append(parts, d.ScheduleDescription)
	}
	return strings.Join(parts, "\n")
}
