package api

import (
	"fitcoach/admin/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler serves roster listings and profile images.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type AvatarUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// ListTrainers handles GET /api/v1/users/trainers
func (h *UserHandler) ListTrainers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	trainers, err := h.userService.ListTrainers(c.Request.Context(), actor)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainers": mapUsersToResponse(trainers)})
}

// ListClients handles GET /api/v1/users/clients
func (h *UserHandler) ListClients(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	clients, err := h.userService.ListClients(c.Request.Context(), actor)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": mapUsersToResponse(clients)})
}

// GetUserTrainer handles GET /api/v1/users/:userId/trainer
func (h *UserHandler) GetUserTrainer(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	trainer, err := h.userService.GetUserTrainer(c.Request.Context(), actor, c.Param("userId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainer": MapUserToResponse(trainer)})
}

// RequestAvatarUploadURL handles POST /api/v1/users/me/avatar/upload-url
func (h *UserHandler) RequestAvatarUploadURL(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req AvatarUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetails(c, http.StatusBadRequest, "Validation error", bindingErrorDetails(err))
		return
	}

	resp, err := h.userService.RequestAvatarUploadURL(c.Request.Context(), actor, req.ContentType)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmAvatarUpload handles PUT /api/v1/users/me/avatar
func (h *UserHandler) ConfirmAvatarUpload(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetails(c, http.StatusBadRequest, "Validation error", bindingErrorDetails(err))
		return
	}

	user, err := h.userService.ConfirmAvatarUpload(c.Request.Context(), actor, req.ObjectKey)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": MapUserToResponse(user)})
}
