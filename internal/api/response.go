package api

import (
	"errors"
	"fitcoach/admin/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

func abortWithDetails(c *gin.Context, code int, message, details string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message, Details: details})
}

// serviceErrorStatus maps service errors to a status and a public message.
var serviceErrorStatus = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrUnauthorized, http.StatusForbidden, "Unauthorized"},
	{service.ErrMissingField, http.StatusBadRequest, "Missing required fields"},
	{service.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
	{service.ErrScheduleNotFound, http.StatusNotFound, "Schedule not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrTrainerNotAssigned, http.StatusNotFound, "Trainer not found"},
	{service.ErrUserAlreadyExists, http.StatusConflict, "User with this email already exists"},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized, "Invalid email or password"},
	{service.ErrAccountInactive, http.StatusForbidden, "Account is inactive"},
	{service.ErrInvalidImageType, http.StatusBadRequest, "Unsupported image type"},
	{service.ErrImageKeyNotOwned, http.StatusForbidden, "Image key does not belong to the caller"},
	{service.ErrStorageUnavailable, http.StatusServiceUnavailable, "Image storage is not available"},
	{service.ErrCreateFailed, http.StatusInternalServerError, "CreateFailed"},
	{service.ErrUpdateFailed, http.StatusInternalServerError, "UpdateFailed"},
	{service.ErrDeleteFailed, http.StatusInternalServerError, "DeleteFailed"},
	{service.ErrExportFailed, http.StatusInternalServerError, "ExportFailed"},
}

// respondWithServiceError converts err into the error envelope and aborts.
// Client errors carry the service message as details; server errors carry the cause.
func respondWithServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			details := err.Error()
			if details == m.err.Error() {
				details = ""
			}
			abortWithDetails(c, m.status, m.message, details)
			return
		}
	}
	abortWithDetails(c, http.StatusInternalServerError, "UnknownError", err.Error())
}
