package service

import (
	"context"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]domain.User
	seq       int
	calls     int
	getErr    error
	createErr error
}

func newMockUserRepo(users ...domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return "", m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return "", repository.ErrDuplicate
		}
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = *user
	return user.ID, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []domain.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var out []domain.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.TrainerID != "" && (u.TrainerID == nil || *u.TrainerID != filter.TrainerID) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockUserRepo) SetImage(_ context.Context, id, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Image = image
	m.users[id] = u
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]domain.Schedule
	seq       int
	calls     int
	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]domain.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, s *domain.Schedule) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return "", m.createErr
	}
	m.seq++
	s.ID = fmt.Sprintf("schedule-%d", m.seq)
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	m.schedules[s.ID] = *s
	return s.ID, nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	s, ok := m.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]domain.Schedule, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var matched []domain.Schedule
	for _, s := range m.schedules {
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.ScheduleSubject), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.TrainerID != "" && s.TrainerID != filter.TrainerID {
			continue
		}
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.After(matched[j].StartTime)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	if filter.Skip >= total {
		return []domain.Schedule{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Skip+filter.Limit < total {
		end = filter.Skip + filter.Limit
	}
	return matched[filter.Skip:end], total, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, s *domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.schedules[s.ID]; !ok {
		return repository.ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.schedules[s.ID] = *s
	return nil
}

func (m *mockScheduleRepo) SetLink(_ context.Context, id, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	s, ok := m.schedules[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.ScheduleLink = link
	m.schedules[id] = s
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.schedules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) MarkCompleted(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var changed int64
	for id, s := range m.schedules {
		if s.EndTime.Before(now) && s.Status != domain.ScheduleStatusCompleted {
			s.Status = domain.ScheduleStatusCompleted
			s.UpdatedAt = now
			m.schedules[id] = s
			changed++
		}
	}
	return changed, nil
}

func (m *mockScheduleRepo) get(id string) domain.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedules[id]
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	createErr     error
	deleteErr     error
}

func (m *mockNotificationRepo) Create(_ context.Context, n *domain.Notification) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	n.ID = fmt.Sprintf("notification-%d", len(m.notifications)+1)
	n.CreatedAt = time.Now().UTC()
	m.notifications = append(m.notifications, *n)
	return n.ID, nil
}

func (m *mockNotificationRepo) ListBySchedule(_ context.Context, scheduleID string) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.ScheduleID == scheduleID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) DeleteBySchedule(_ context.Context, scheduleID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.notifications[:0]
	var removed int64
	for _, n := range m.notifications {
		if n.ScheduleID == scheduleID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return removed, nil
}

// ── Mock FileStorage ──

type mockStorage struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (m *mockStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://storage.test/upload/" + key + "?type=" + contentType, nil
}

func (m *mockStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://storage.test/" + key, nil
}

func (m *mockStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}
