package api

import (
	"fitcoach/admin/internal/service"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler serves file downloads of sessions.
type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportSchedules handles GET /api/v1/schedules/export.xlsx?search=
func (h *ExportHandler) ExportSchedules(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportService.ExportSchedules(c.Request.Context(), actor, c.Query("search"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CalendarFeed handles GET /api/v1/schedules/calendar.ics
func (h *ExportHandler) CalendarFeed(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportService.CalendarFeed(c.Request.Context(), actor)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, icsContentType, buf.Bytes())
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
