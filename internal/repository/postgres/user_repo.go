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

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a gorm backed repository.UserRepository.
func NewUserRepo(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) (string, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return "", errors.New("user email, password hash, and role are required")
	}

	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}

	row := userRowFrom(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", repository.ErrDuplicate
		}
		return "", err
	}
	return user.ID, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) first(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	user := row.toDomain()
	return &user, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	var rows []userRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return usersFromRows(rows), nil
}

func (r *userRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	db := r.db.WithContext(ctx).Model(&userRow{})
	if filter.Role != "" {
		db = db.Where("role = ?", string(filter.Role))
	}
	if filter.TrainerID != "" {
		db = db.Where("trainer_id = ?", filter.TrainerID)
	}

	var rows []userRow
	if err := db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return usersFromRows(rows), nil
}

func (r *userRepo) SetImage(ctx context.Context, id, image string) error {
	result := r.db.WithContext(ctx).
		Model(&userRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"image": image, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func usersFromRows(rows []userRow) []domain.User {
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users
}
