package service

import (
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	trainerActor = Actor{ID: "trainer-t", Role: domain.RoleTrainer}
	adminActor   = Actor{ID: "admin-1", Role: domain.RoleAdmin}
	clientActor  = Actor{ID: "client-a", Role: domain.RoleUser}
)

type scheduleFixture struct {
	svc           ScheduleService
	users         *mockUserRepo
	schedules     *mockScheduleRepo
	notifications *mockNotificationRepo
	storage       *mockStorage
	now           time.Time
}

func newScheduleFixture(t *testing.T, loc *time.Location) *scheduleFixture {
	t.Helper()
	trainerID := "trainer-t"
	f := &scheduleFixture{
		users: newMockUserRepo(
			domain.User{ID: "client-a", Name: "Alice", Role: domain.RoleUser, TrainerID: &trainerID, Image: "avatars/client-a/me.png"},
			domain.User{ID: "trainer-t", Name: "Tom", Role: domain.RoleTrainer},
		),
		schedules:     newMockScheduleRepo(),
		notifications: &mockNotificationRepo{},
		storage:       &mockStorage{},
		now:           time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewScheduleService(f.schedules, f.users, f.notifications, f.storage, ScheduleOptions{
		Location:        loc,
		DefaultPageSize: 10,
		MaxPageSize:     100,
		MeetingBaseURL:  "https://meet.example.com/",
		Now:             func() time.Time { return f.now },
	}, zap.NewNop())
	return f
}

func introInput() CreateScheduleInput {
	return CreateScheduleInput{
		Date:            "2025-06-01",
		StartTime:       "09:00",
		EndTime:         "10:00",
		ScheduleSubject: "Intro",
		UserID:          "client-a",
		TrainerID:       "trainer-t",
	}
}

func (f *scheduleFixture) create(t *testing.T, in CreateScheduleInput) *domain.Schedule {
	t.Helper()
	s, err := f.svc.CreateSchedule(context.Background(), trainerActor, in)
	require.NoError(t, err)
	return s
}

func strPtr(s string) *string { return &s }

// ── Create ──

func TestCreateSchedule_Pending(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)

	s := f.create(t, introInput())

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, domain.ScheduleStatusPending, s.Status)
	assert.True(t, s.StartTime.Before(s.EndTime))
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), s.StartTime)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), s.EndTime)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), s.Date)
	assert.Empty(t, f.notifications.notifications, "create must not notify")
}

func TestCreateSchedule_UsesConfiguredTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	f := newScheduleFixture(t, berlin)

	s := f.create(t, introInput())

	assert.Equal(t, time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC), s.StartTime.UTC())
	assert.Equal(t, "09:00", s.StartTime.In(berlin).Format(ClockLayout))
}

func TestCreateSchedule_MissingFields(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	in := introInput()
	in.Date = ""
	in.UserID = "  "

	_, err := f.svc.CreateSchedule(context.Background(), trainerActor, in)

	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "date, userId")
	assert.Zero(t, f.schedules.calls)
}

func TestCreateSchedule_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateScheduleInput)
	}{
		{"bad date", func(in *CreateScheduleInput) { in.Date = "01/06/2025" }},
		{"bad start", func(in *CreateScheduleInput) { in.StartTime = "9am" }},
		{"end before start", func(in *CreateScheduleInput) { in.EndTime = "08:30" }},
		{"end equals start", func(in *CreateScheduleInput) { in.EndTime = "09:00" }},
		{"unknown user", func(in *CreateScheduleInput) { in.UserID = "ghost" }},
		{"unknown trainer", func(in *CreateScheduleInput) { in.TrainerID = "ghost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newScheduleFixture(t, time.UTC)
			in := introInput()
			tt.mutate(&in)

			_, err := f.svc.CreateSchedule(context.Background(), trainerActor, in)

			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, f.schedules.schedules)
		})
	}
}

func TestCreateSchedule_PersistenceFailure(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	cause := errors.New("connection reset")
	f.schedules.createErr = cause

	_, err := f.svc.CreateSchedule(context.Background(), trainerActor, introInput())

	require.ErrorIs(t, err, ErrCreateFailed)
	assert.ErrorIs(t, err, cause)
}

// ── Authorization ──

func TestScheduleOperations_RejectNonStaffBeforeDataAccess(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	ctx := context.Background()
	subject := "x"

	ops := map[string]func(Actor) error{
		"list": func(a Actor) error { _, err := f.svc.ListSchedules(ctx, a, ListSchedulesInput{}); return err },
		"get":  func(a Actor) error { _, err := f.svc.GetSchedule(ctx, a, "schedule-1"); return err },
		"create": func(a Actor) error {
			_, err := f.svc.CreateSchedule(ctx, a, introInput())
			return err
		},
		"update": func(a Actor) error {
			_, err := f.svc.UpdateSchedule(ctx, a, "schedule-1", UpdateScheduleInput{ScheduleSubject: &subject})
			return err
		},
		"delete": func(a Actor) error { return f.svc.DeleteSchedule(ctx, a, "schedule-1") },
		"link": func(a Actor) error {
			_, err := f.svc.AttachMeetingLink(ctx, a, "schedule-1", "")
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(clientActor), ErrUnauthorized)
			assert.ErrorIs(t, op(Actor{Role: domain.RoleAdmin}), ErrUnauthorized, "missing identity")
		})
	}
	assert.Zero(t, f.schedules.calls)
	assert.Zero(t, f.users.calls)
}

// ── Completion sweep ──

func TestCompletePastSchedules(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	past := f.create(t, introInput())
	futureIn := introInput()
	futureIn.Date = "2025-06-02"
	future := f.create(t, futureIn)

	f.now = time.Date(2025, 6, 1, 10, 1, 0, 0, time.UTC)

	changed, err := f.svc.CompletePastSchedules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	assert.Equal(t, domain.ScheduleStatusCompleted, f.schedules.get(past.ID).Status)
	assert.Equal(t, domain.ScheduleStatusPending, f.schedules.get(future.ID).Status)

	changed, err = f.svc.CompletePastSchedules(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed, "sweep must be idempotent")
	assert.Equal(t, domain.ScheduleStatusCompleted, f.schedules.get(past.ID).Status)
}

func TestCompletePastSchedules_EndBoundaryIsExclusive(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	s := f.create(t, introInput())

	f.now = s.EndTime
	changed, err := f.svc.CompletePastSchedules(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.Equal(t, domain.ScheduleStatusPending, f.schedules.get(s.ID).Status)
}

// ── List ──

func TestListSchedules_SweepsBeforeListing(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	f.create(t, introInput())
	f.now = time.Date(2025, 6, 1, 10, 1, 0, 0, time.UTC)

	list, err := f.svc.ListSchedules(context.Background(), adminActor, ListSchedulesInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Schedules, 1)
	assert.Equal(t, domain.ScheduleStatusCompleted, list.Schedules[0].Status)
}

func TestListSchedules_AttachesParticipants(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	f.create(t, introInput())

	list, err := f.svc.ListSchedules(context.Background(), trainerActor, ListSchedulesInput{})
	require.NoError(t, err)
	require.Len(t, list.Schedules, 1)

	row := list.Schedules[0]
	assert.Equal(t, "Alice", row.User.Name)
	assert.Equal(t, "https://storage.test/avatars/client-a/me.png", row.User.Image)
	assert.Equal(t, "Tom", row.Trainer.Name)
	assert.Empty(t, row.Trainer.Image)
}

func TestListSchedules_SearchAndOrdering(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	for i, subject := range []string{"Intro", "Leg day", "Advanced INTRO"} {
		in := introInput()
		in.ScheduleSubject = subject
		in.Date = time.Date(2025, 6, 2+i, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		f.create(t, in)
	}
	ctx := context.Background()

	all, err := f.svc.ListSchedules(ctx, trainerActor, ListSchedulesInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	blank, err := f.svc.ListSchedules(ctx, trainerActor, ListSchedulesInput{Page: 1, Limit: 10, Search: "   "})
	require.NoError(t, err)
	assert.Equal(t, all, blank, "empty search must behave like no search")

	require.Len(t, all.Schedules, 3)
	assert.Equal(t, "Advanced INTRO", all.Schedules[0].ScheduleSubject, "newest date first")
	assert.Equal(t, "Intro", all.Schedules[2].ScheduleSubject)

	matched, err := f.svc.ListSchedules(ctx, trainerActor, ListSchedulesInput{Search: "intro"})
	require.NoError(t, err)
	assert.Len(t, matched.Schedules, 2)
	assert.Equal(t, 1, matched.TotalPages)
}

func TestListSchedules_PagePastEnd(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	for i := 0; i < 3; i++ {
		f.create(t, introInput())
	}

	first, err := f.svc.ListSchedules(context.Background(), trainerActor, ListSchedulesInput{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, first.Schedules, 2)
	assert.Equal(t, 2, first.TotalPages)

	beyond, err := f.svc.ListSchedules(context.Background(), trainerActor, ListSchedulesInput{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Schedules)
	assert.Equal(t, first.TotalPages, beyond.TotalPages)
}

func TestListSchedules_ClampsPaging(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)

	tests := []struct {
		in        ListSchedulesInput
		wantPage  int
		wantLimit int
	}{
		{ListSchedulesInput{}, 1, 10},
		{ListSchedulesInput{Page: -3, Limit: -1}, 1, 10},
		{ListSchedulesInput{Page: 2, Limit: 1000}, 2, 100},
		{ListSchedulesInput{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tt := range tests {
		list, err := f.svc.ListSchedules(context.Background(), trainerActor, tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, list.Page)
		assert.Equal(t, tt.wantLimit, list.Limit)
		assert.Zero(t, list.TotalPages)
		assert.NotNil(t, list.Schedules)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
}

// ── Get ──

func TestGetSchedule(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	s := f.create(t, introInput())

	got, err := f.svc.GetSchedule(context.Background(), trainerActor, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "Alice", got.User.Name)

	_, err = f.svc.GetSchedule(context.Background(), trainerActor, "missing")
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

// ── Update ──

func TestUpdateSchedule_RecordsOneNotification(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	s := f.create(t, introInput())

	updated, err := f.svc.UpdateSchedule(context.Background(), trainerActor, s.ID, UpdateScheduleInput{
		ScheduleSubject: strPtr("Intro v2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Intro v2", updated.ScheduleSubject)
	assert.Equal(t, s.StartTime, updated.StartTime, "omitted fields keep their value")
	assert.Equal(t, "Intro v2", f.schedules.get(s.ID).ScheduleSubject)

	notes, err := f.notifications.ListBySchedule(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Schedule updated: Intro v2 on 2025-06-01 at 09:00 for Alice with trainer Tom", notes[0].Message)
	assert.Equal(t, "client-a", notes[0].UserID)
	assert.Equal(t, "trainer-t", notes[0].TrainerID)
}

func TestUpdateSchedule_RenormalisesTimes(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	f := newScheduleFixture(t, berlin)
	s := f.create(t, introInput())

	updated, err := f.svc.UpdateSchedule(context.Background(), trainerActor, s.ID, UpdateScheduleInput{
		Date:      strPtr("2025-06-03"),
		StartTime: strPtr("08:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 3, 8, 0, 0, 0, berlin), updated.StartTime.In(berlin))
	assert.Equal(t, time.Date(2025, 6, 3, 10, 0, 0, 0, berlin), updated.EndTime.In(berlin), "end keeps its clock on the new day")
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, berlin), updated.Date.In(berlin))

	notes, _ := f.notifications.ListBySchedule(context.Background(), s.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "on 2025-06-03 at 08:00")
}

func TestUpdateSchedule_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to update", func(t *testing.T) {
		f := newScheduleFixture(t, time.UTC)
		s := f.create(t, introInput())
		_, err := f.svc.UpdateSchedule(ctx, trainerActor, s.ID, UpdateScheduleInput{})
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("blank subject", func(t *testing.T) {
		f := newScheduleFixture(t, time.UTC)
		s := f.create(t, introInput())
		_, err := f.svc.UpdateSchedule(ctx, trainerActor, s.ID, UpdateScheduleInput{ScheduleSubject: strPtr(" ")})
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("not found", func(t *testing.T) {
		f := newScheduleFixture(t, time.UTC)
		_, err := f.svc.UpdateSchedule(ctx, trainerActor, "missing", UpdateScheduleInput{ScheduleSubject: strPtr("x")})
		assert.ErrorIs(t, err, ErrScheduleNotFound)
		assert.Empty(t, f.notifications.notifications)
	})

	t.Run("inverted window", func(t *testing.T) {
		f := newScheduleFixture(t, time.UTC)
		s := f.create(t, introInput())
		_, err := f.svc.UpdateSchedule(ctx, trainerActor, s.ID, UpdateScheduleInput{EndTime: strPtr("08:00")})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, f.notifications.notifications)
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := newScheduleFixture(t, time.UTC)
		s := f.create(t, introInput())
		f.schedules.updateErr = errors.New("write conflict")
		_, err := f.svc.UpdateSchedule(ctx, trainerActor, s.ID, UpdateScheduleInput{ScheduleSubject: strPtr("x")})
		assert.ErrorIs(t, err, ErrUpdateFailed)
		assert.Contains(t, err.Error(), "write conflict")
		assert.Empty(t, f.notifications.notifications)
	})

	t.Run("notification failure", func(t *testing.T) {
		f := newScheduleFixture(t, time.UTC)
		s := f.create(t, introInput())
		f.notifications.createErr = errors.New("insert failed")
		_, err := f.svc.UpdateSchedule(ctx, trainerActor, s.ID, UpdateScheduleInput{ScheduleSubject: strPtr("x")})
		assert.ErrorIs(t, err, ErrUpdateFailed)
	})
}

// ── Delete ──

func TestDeleteSchedule(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	ctx := context.Background()
	s := f.create(t, introInput())
	other := f.create(t, introInput())
	_, err := f.svc.UpdateSchedule(ctx, trainerActor, s.ID, UpdateScheduleInput{ScheduleSubject: strPtr("Intro v2")})
	require.NoError(t, err)
	_, err = f.svc.UpdateSchedule(ctx, trainerActor, other.ID, UpdateScheduleInput{ScheduleSubject: strPtr("Other")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSchedule(ctx, adminActor, s.ID))

	_, err = f.svc.GetSchedule(ctx, adminActor, s.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	notes, _ := f.notifications.ListBySchedule(ctx, s.ID)
	assert.Empty(t, notes)
	notes, _ = f.notifications.ListBySchedule(ctx, other.ID)
	assert.Len(t, notes, 1)

	assert.ErrorIs(t, f.svc.DeleteSchedule(ctx, adminActor, s.ID), ErrScheduleNotFound)
}

func TestDeleteSchedule_Failures(t *testing.T) {
	ctx := context.Background()

	f := newScheduleFixture(t, time.UTC)
	s := f.create(t, introInput())
	f.schedules.deleteErr = errors.New("timeout")
	err := f.svc.DeleteSchedule(ctx, trainerActor, s.ID)
	assert.ErrorIs(t, err, ErrDeleteFailed)

	f = newScheduleFixture(t, time.UTC)
	s = f.create(t, introInput())
	f.notifications.deleteErr = errors.New("timeout")
	assert.NoError(t, f.svc.DeleteSchedule(ctx, trainerActor, s.ID), "cascade failure is only logged")
}

// ── Meeting link ──

func TestAttachMeetingLink(t *testing.T) {
	f := newScheduleFixture(t, time.UTC)
	ctx := context.Background()
	s := f.create(t, introInput())

	linked, err := f.svc.AttachMeetingLink(ctx, trainerActor, s.ID, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(linked.ScheduleLink, "https://meet.example.com/fitcoach-"), linked.ScheduleLink)

	linked, err = f.svc.AttachMeetingLink(ctx, trainerActor, s.ID, "https://zoom.example.com/j/123")
	require.NoError(t, err)
	assert.Equal(t, "https://zoom.example.com/j/123", linked.ScheduleLink)
	assert.Empty(t, f.notifications.notifications)

	_, err = f.svc.AttachMeetingLink(ctx, trainerActor, s.ID, "not a url")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AttachMeetingLink(ctx, trainerActor, "missing", "")
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
