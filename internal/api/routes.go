package api

import (
	"fitcoach/admin/internal/domain"
	"fitcoach/admin/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services groups the application services the HTTP layer depends on.
type Services struct {
	Auth     service.AuthService
	Schedule service.ScheduleService
	User     service.UserService
	Export   service.ExportService
}

// NewRouter builds a gin engine with the standard middleware stack and all routes.
func NewRouter(jwtSecret string, services Services, logger *zap.Logger) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))
	SetupRoutes(router, jwtSecret, services)
	return router, nil
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	scheduleHandler := NewScheduleHandler(services.Schedule)
	userHandler := NewUserHandler(services.User)
	exportHandler := NewExportHandler(services.Export)

	authMiddleware := AuthMiddleware(jwtSecret)
	staffOnly := RoleMiddleware(domain.StaffRoles...)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Schedule Routes ---
		scheduleGroup := protected.Group("/schedules")
		scheduleGroup.Use(staffOnly)
		{
			scheduleGroup.GET("", scheduleHandler.ListSchedules)
			scheduleGroup.POST("", scheduleHandler.CreateSchedule)
			scheduleGroup.GET("/export.xlsx", exportHandler.ExportSchedules)
			scheduleGroup.GET("/calendar.ics", exportHandler.CalendarFeed)
			scheduleGroup.GET("/:scheduleId", scheduleHandler.GetSchedule)
			scheduleGroup.PUT("/:scheduleId", scheduleHandler.UpdateSchedule)
			scheduleGroup.DELETE("/:scheduleId", scheduleHandler.DeleteSchedule)
			scheduleGroup.POST("/:scheduleId/meeting-link", scheduleHandler.AttachMeetingLink)
		}

		// --- User Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/trainers", staffOnly, userHandler.ListTrainers)
			userGroup.GET("/clients", staffOnly, userHandler.ListClients)
			userGroup.GET("/:userId/trainer", userHandler.GetUserTrainer)
			userGroup.POST("/me/avatar/upload-url", userHandler.RequestAvatarUploadURL)
			userGroup.PUT("/me/avatar", userHandler.ConfirmAvatarUpload)
		}
	}
}
