package service

import (
	"context"
	"fitcoach/admin/internal/storage"
	"strings"

	"go.uber.org/zap"
)

// imageResolver turns stored profile image keys into URLs a browser can load.
type imageResolver struct {
	storage storage.FileStorage
	logger  *zap.Logger
}

// URL returns a presigned download URL for key. Absolute URLs and empty keys are
// returned unchanged, as is the key itself when no storage is configured.
func (r imageResolver) URL(ctx context.Context, key string) string {
	if key == "" || r.storage == nil || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	u, err := r.storage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		r.logger.Warn("failed to presign profile image", zap.String("key", key), zap.Error(err))
		return ""
	}
	return u
}
