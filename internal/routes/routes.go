package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/admin"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/announcements"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/auth"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/mentor"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/messages"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/notifications"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/profiles"
	"github.com/FACorreiaa/go-mentorportal/internal/app/domain/student"
	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/cache"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/config"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/guard"
)

// Dependencies are the process-wide objects the handlers share. Everything per browser comes
// from the profile middleware instead.
type Dependencies struct {
	Config  *config.Config
	Streams *streaming.Manager
}

type AppHandlers struct {
	Auth          *auth.AuthHandlers
	Profiles      *profiles.ProfilesHandler
	Student       *student.StudentHandlers
	Announcements *announcements.AnnouncementsHandlers
	Mentor        *mentor.MentorHandlers
	Admin         *admin.AdminHandlers
	Messages      *messages.MessagesHandlers
	Notifications *notifications.NotificationsHandlers
}

func Setup(r *gin.Engine, deps Dependencies, log *zap.Logger) {
	if deps.Streams == nil {
		deps.Streams = streaming.NewManager()
	}
	setupRouter(r, setupDependencies(deps, log), log)
}

func setupDependencies(deps Dependencies, log *zap.Logger) *AppHandlers {
	cfg := deps.Config
	return &AppHandlers{
		Auth:          auth.NewAuthHandlers(log, deps.Streams),
		Profiles:      profiles.NewProfilesHandler(log),
		Student:       student.NewStudentHandlers(student.NewService(log), cfg.DirectoryPageSize, log),
		Announcements: announcements.NewAnnouncementsHandlers(log),
		Mentor:        mentor.NewMentorHandlers(log),
		Admin:         admin.NewAdminHandlers(admin.NewService(log), log),
		Messages:      messages.NewMessagesHandlers(deps.Streams, cfg.Polling.ChatInterval, log),
		Notifications: notifications.NewNotificationsHandlers(deps.Streams, cfg.Polling.NotificationInterval, log),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, log *zap.Logger) {
	guardCfg := guard.DefaultConfig(log)
	require := func(roles ...models.Role) gin.HandlerFunc {
		return guard.Require(guardCfg, middleware.Provider, roles...)
	}

	// Public
	r.GET("/", h.Auth.LandingPage)
	r.GET("/login", h.Auth.LoginPage)
	r.POST("/debug/reset", h.Auth.ResetHandler)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.LoginHandler)
		authGroup.POST("/signup", h.Auth.SignupHandler)
		authGroup.POST("/logout", h.Auth.LogoutHandler)
		authGroup.GET("/session", h.Auth.SessionHandler)
		authGroup.GET("/me", require(), h.Auth.MeHandler)
	}

	// Any signed-in role
	signedIn := r.Group("/")
	signedIn.Use(require())
	{
		signedIn.GET("/profile", h.Profiles.GetProfile)
		signedIn.PUT("/profile", h.Profiles.UpdateProfile)

		signedIn.GET("/messages", h.Messages.Contacts)
		signedIn.GET("/messages/conversation", h.Messages.Conversation)
		signedIn.POST("/messages/send", h.Messages.Send)
		signedIn.GET("/messages/stream", h.Messages.Stream)
		signedIn.POST("/messages/stream/refresh", h.Messages.RefreshStream)

		signedIn.GET("/notifications", h.Notifications.List)
		signedIn.GET("/notifications/unread-count", h.Notifications.UnreadCount)
		signedIn.GET("/notifications/stream", h.Notifications.Stream)
		signedIn.POST("/notifications/stream/refresh", h.Notifications.RefreshStream)
		signedIn.PUT("/notifications/read-all", h.Notifications.MarkAllRead)
		signedIn.PUT("/notifications/:id/read", h.Notifications.MarkRead)
	}

	studentGroup := r.Group("/student")
	studentGroup.Use(require(models.RoleStudent))
	{
		studentGroup.GET("/dashboard", h.Student.Dashboard)
		studentGroup.GET("/mentor", h.Student.Mentor)
		studentGroup.GET("/directory", h.Student.Directory)
		studentGroup.GET("/references", h.Student.References)
		studentGroup.GET("/colleges", h.Student.Reference(cache.KeyColleges))
		studentGroup.GET("/cities", h.Student.Reference(cache.KeyCities))
		studentGroup.GET("/batches", h.Student.Reference(cache.KeyBatches))
	}

	announcementsGroup := r.Group("/announcements")
	announcementsGroup.Use(require(models.RoleStudent, models.RoleMentor))
	{
		announcementsGroup.GET("/feed", h.Announcements.Feed)
		announcementsGroup.GET("/mine", h.Announcements.Mine)
		announcementsGroup.POST("", h.Announcements.Create)
	}

	mentorGroup := r.Group("/mentor")
	mentorGroup.Use(require(models.RoleMentor))
	{
		mentorGroup.GET("/dashboard", h.Mentor.Dashboard)
		mentorGroup.POST("/announcements/approve", h.Mentor.ApproveAnnouncement)
		mentorGroup.POST("/announcements/reject", h.Mentor.RejectAnnouncement)
		mentorGroup.POST("/students/block", h.Mentor.BlockStudent)
		mentorGroup.POST("/broadcast", h.Mentor.Broadcast)
	}

	adminGroup := r.Group("/admin")
	adminGroup.Use(require(models.RoleAdmin))
	{
		adminGroup.GET("/dashboard", h.Admin.Dashboard)
		adminGroup.GET("/students", h.Admin.Students)
		adminGroup.GET("/mentors", h.Admin.Mentors)
		adminGroup.POST("/students/approve", h.Admin.ApproveStudent)
		adminGroup.POST("/users/block", h.Admin.BlockUser)
		adminGroup.POST("/announcements", h.Admin.SendAnnouncement)
		adminGroup.POST("/mentors", h.Admin.AddMentor)
		adminGroup.DELETE("/announcements/:id", h.Admin.DeleteAnnouncement)
	}

	log.Info("Routes registered", zap.Int("routes", len(r.Routes())))
}
