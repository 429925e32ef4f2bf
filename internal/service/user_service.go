package service

import (
	"context"
	"errors"
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/repository"
	"fitcoach/admin/internal/storage"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrTrainerNotAssigned   = errors.New("user has no trainer assigned")
	ErrStorageUnavailable   = errors.New("image storage is not configured")
	ErrInvalidImageType     = errors.New("invalid or missing image content type")
	ErrImageKeyNotOwned     = errors.New("image key does not belong to this user")
	ErrUploadURLError       = errors.New("failed to generate upload URL")
	ErrUserListFailed       = errors.New("failed to list users")
	ErrProfileUpdateFailure = errors.New("failed to update profile image")
)

// UploadURLResponse is returned to the client before a direct-to-storage upload.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key client needs to report back on confirm
}

type UserService interface {
	ListTrainers(ctx context.Context, actor Actor) ([]domain.User, error)
	// ListClients returns the caller's clients; administrators see every client.
	ListClients(ctx context.Context, actor Actor) ([]domain.User, error)
	// GetUserTrainer is open to staff and to the client themselves.
	GetUserTrainer(ctx context.Context, actor Actor, userID string) (*domain.User, error)

	RequestAvatarUploadURL(ctx context.Context, actor Actor, contentType string) (*UploadURLResponse, error)
	ConfirmAvatarUpload(ctx context.Context, actor Actor, objectKey string) (*domain.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	images      imageResolver
	logger      *zap.Logger
}

// NewUserService creates a new instance of userService. fileStorage may be nil.
func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, logger *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		images:      imageResolver{storage: fileStorage, logger: logger},
		logger:      logger,
	}
}

// ListTrainers returns every trainer account.
func (s *userService) ListTrainers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.UserFilter{Role: domain.RoleTrainer})
}

func (s *userService) ListClients(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := authorizeStaff(actor); err != nil {
		return nil, err
	}
	filter := repository.UserFilter{Role: domain.RoleUser}
	if actor.Role == domain.RoleTrainer {
		filter.TrainerID = actor.ID
	}
	return s.list(ctx, filter)
}

func (s *userService) list(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", zap.String("role", string(filter.Role)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUserListFailed, err)
	}
	for i := range users {
		s.sanitize(ctx, &users[i])
	}
	return users, nil
}

// GetUserTrainer looks up the trainer responsible for a client.
func (s *userService) GetUserTrainer(ctx context.Context, actor Actor, userID string) (*domain.User, error) {
	if actor.ID == "" || (actor.ID != userID && authorizeStaff(actor) != nil) {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsClient() || user.TrainerID == nil || *user.TrainerID == "" {
		return nil, ErrTrainerNotAssigned
	}

	trainer, err := s.userRepo.GetByID(ctx, *user.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotAssigned
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrTrainerNotAssigned
	}
	s.sanitize(ctx, trainer)
	return trainer, nil
}

// === Profile image upload ===

// RequestAvatarUploadURL generates a pre-signed URL the caller uploads their profile image to.
func (s *userService) RequestAvatarUploadURL(ctx context.Context, actor Actor, contentType string) (*UploadURLResponse, error) {
	if actor.ID == "" {
		return nil, ErrUnauthorized
	}
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, ErrInvalidImageType
	}

	objectKey := path.Join(avatarPrefix(actor.ID), uuid.NewString()+ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmAvatarUpload stores objectKey as the caller's profile image and removes the old one.
func (s *userService) ConfirmAvatarUpload(ctx context.Context, actor Actor, objectKey string) (*domain.User, error) {
	if actor.ID == "" {
		return nil, ErrUnauthorized
	}
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(objectKey, avatarPrefix(actor.ID)+"/") {
		return nil, ErrImageKeyNotOwned
	}

	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	previous := user.Image

	if err := s.userRepo.SetImage(ctx, actor.ID, objectKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileUpdateFailure, err)
	}
	if previous != "" && previous != objectKey && strings.HasPrefix(previous, avatarPrefix(actor.ID)+"/") {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete previous profile image", zap.String("key", previous), zap.Error(err))
		}
	}

	user.Image = objectKey
	s.sanitize(ctx, user)
	return user, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func avatarPrefix(userID string) string {
	return path.Join("avatars", userID)
}

// sanitize clears the password hash and resolves the image key to a URL.
func (s *userService) sanitize(ctx context.Context, u *domain.User) {
	u.PasswordHash = ""
	u.Image = s.images.URL(ctx, u.Image)
}
