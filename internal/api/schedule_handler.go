package api

import (
	"fitcoach/admin/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler exposes session management over HTTP.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- Request Structs ---

type ListSchedulesQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search" binding:"max=200"`
}

// Blank fields pass binding and are reported by the service as missing.
type CreateScheduleRequest struct {
	Date                string `json:"date" binding:"omitempty,calendar_date"`
	StartTime           string `json:"startTime" binding:"omitempty,clock"`
	EndTime             string `json:"endTime" binding:"omitempty,clock"`
	ScheduleSubject     string `json:"scheduleSubject" binding:"max=200"`
	ScheduleDescription string `json:"scheduleDescription" binding:"max=2000"`
	UserID              string `json:"userId"`
	TrainerID           string `json:"trainerId"`
}

type UpdateScheduleRequest struct {
	Date                *string `json:"date" binding:"omitempty,calendar_date"`
	StartTime           *string `json:"startTime" binding:"omitempty,clock"`
	EndTime             *string `json:"endTime" binding:"omitempty,clock"`
	ScheduleSubject     *string `json:"scheduleSubject" binding:"omitempty,max=200"`
	ScheduleDescription *string `json:"scheduleDescription" binding:"omitempty,max=2000"`
}

type MeetingLinkRequest struct {
	Link string `json:"link" binding:"omitempty,url"`
}

// --- Handler Methods ---

// ListSchedules handles GET /api/v1/schedules?page=&limit=&search=
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var q ListSchedulesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithDetails(c, http.StatusBadRequest, "Validation error", bindingErrorDetails(err))
		return
	}

	list, err := h.scheduleService.ListSchedules(c.Request.Context(), actor, service.ListSchedulesInput{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetSchedule handles GET /api/v1/schedules/:scheduleId
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.GetSchedule(c.Request.Context(), actor, c.Param("scheduleId"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// CreateSchedule handles POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetails(c, http.StatusBadRequest, "Validation error", bindingErrorDetails(err))
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(c.Request.Context(), actor, service.CreateScheduleInput{
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		ScheduleSubject:     req.ScheduleSubject,
		ScheduleDescription: req.ScheduleDescription,
		UserID:              req.UserID,
		TrainerID:           req.TrainerID,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

// UpdateSchedule handles PUT /api/v1/schedules/:scheduleId
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetails(c, http.StatusBadRequest, "Validation error", bindingErrorDetails(err))
		return
	}

	schedule, err := h.scheduleService.UpdateSchedule(c.Request.Context(), actor, c.Param("scheduleId"), service.UpdateScheduleInput{
		Date:                req.Date,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		ScheduleSubject:     req.ScheduleSubject,
		ScheduleDescription: req.ScheduleDescription,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// DeleteSchedule handles DELETE /api/v1/schedules/:scheduleId
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), actor, c.Param("scheduleId")); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

// AttachMeetingLink handles POST /api/v1/schedules/:scheduleId/meeting-link.
// An empty body asks the server to generate a room link.
func (h *ScheduleHandler) AttachMeetingLink(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req MeetingLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithDetails(c, http.StatusBadRequest, "Validation error", bindingErrorDetails(err))
			return
		}
	}

	schedule, err := h.scheduleService.AttachMeetingLink(c.Request.Context(), actor, c.Param("scheduleId"), req.Link)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}
