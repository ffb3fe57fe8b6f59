// Package admin serves the administrator views: statistics, user and mentor management and
// announcement moderation.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

type AdminHandlers struct {
	*domain.BaseHandler
	service Service
}

func NewAdminHandlers(service Service, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{BaseHandler: domain.NewBaseHandler(logger), service: service}
}

func (h *AdminHandlers) Dashboard(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	d, err := h.service.GetDashboard(c.Request.Context(), p.API)
	if err != nil {
		h.HandleError(c, err, "load dashboard")
		return
	}
	h.RenderPage(c, "Admin - Mentor Portal", "Dashboard", d)
}

func (h *AdminHandlers) Students(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	students, err := p.API.Students(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "load students")
		return
	}
	if students == nil {
		students = []models.User{}
	}
	views := make([]*domain.UserView, 0, len(students))
	for _, s := range students {
		views = append(views, domain.NewUserView(s))
	}
	h.RenderPage(c, "Students - Mentor Portal", "Students", gin.H{"students": views})
}

func (h *AdminHandlers) Mentors(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	mentors, err := p.API.Mentors(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "load mentors")
		return
	}
	if mentors == nil {
		mentors = []models.Mentor{}
	}
	h.RenderPage(c, "Mentors - Mentor Portal", "Mentors", gin.H{"mentors": mentors})
}

func (h *AdminHandlers) ApproveStudent(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var a models.UserAction
	if !h.Bind(c, &a) {
		return
	}
	if err := p.API.ApproveStudent(c.Request.Context(), a); err != nil {
		h.HandleError(c, err, "approve student")
		return
	}
	h.Logger.Info("Student approved", zap.String("student_id", a.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "Student approved"})
}

func (h *AdminHandlers) BlockUser(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var a models.UserAction
	if !h.Bind(c, &a) {
		return
	}
	if err := p.API.BlockUser(c.Request.Context(), a); err != nil {
		h.HandleError(c, err, "block user")
		return
	}
	h.Logger.Info("User blocked", zap.String("user_id", a.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

func (h *AdminHandlers) SendAnnouncement(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var a models.NewAnnouncement
	if !h.Bind(c, &a) {
		return
	}
	if err := p.API.SendAnnouncement(c.Request.Context(), a); err != nil {
		h.HandleError(c, err, "send announcement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement sent"})
}

func (h *AdminHandlers) AddMentor(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var m models.NewMentor
	if !h.Bind(c, &m) {
		return
	}
	created, err := p.API.AddMentor(c.Request.Context(), m)
	if err != nil {
		h.HandleError(c, err, "add mentor")
		return
	}
	h.Logger.Info("Mentor added", zap.String("mentor_id", created.ID))
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandlers) DeleteAnnouncement(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := p.API.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		h.HandleError(c, err, "delete announcement")
		return
	}
	h.Logger.Info("Announcement deleted", zap.String("announcement_id", id))
	c.Status(http.StatusNoContent)
}
