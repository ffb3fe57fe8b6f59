// Package mentor serves the mentor dashboard and moderation actions.
package mentor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

// Dashboard is the mentor's home view.
type Dashboard struct {
	PendingAnnouncements []models.Announcement `json:"pendingAnnouncements"`
	Students             []models.User         `json:"students"`
}

type MentorHandlers struct {
	*domain.BaseHandler
}

func NewMentorHandlers(logger *zap.Logger) *MentorHandlers {
	return &MentorHandlers{BaseHandler: domain.NewBaseHandler(logger)}
}

func (h *MentorHandlers) Dashboard(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var d Dashboard
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		v, err := p.API.MentorPendingAnnouncements(ctx)
		d.PendingAnnouncements = v
		return err
	})
	g.Go(func() error {
		v, err := p.API.AssignedStudents(ctx)
		d.Students = v
		return err
	})
	if err := g.Wait(); err != nil {
		h.HandleError(c, err, "load dashboard")
		return
	}
	if d.PendingAnnouncements == nil {
		d.PendingAnnouncements = []models.Announcement{}
	}
	if d.Students == nil {
		d.Students = []models.User{}
	}
	h.RenderPage(c, "Dashboard - Mentor Portal", "Dashboard", d)
}

func (h *MentorHandlers) ApproveAnnouncement(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var d models.ModerationDecision
	if !h.Bind(c, &d) {
		return
	}
	if err := p.API.ApproveAnnouncement(c.Request.Context(), d); err != nil {
		h.HandleError(c, err, "approve announcement")
		return
	}
	h.Logger.Info("Announcement approved", zap.String("announcement_id", d.AnnouncementID))
	c.JSON(http.StatusOK, gin.H{"message": "Announcement approved"})
}

func (h *MentorHandlers) RejectAnnouncement(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var d models.ModerationDecision
	if !h.Bind(c, &d) {
		return
	}
	if err := p.API.RejectAnnouncement(c.Request.Context(), d); err != nil {
		h.HandleError(c, err, "reject announcement")
		return
	}
	h.Logger.Info("Announcement rejected", zap.String("announcement_id", d.AnnouncementID))
	c.JSON(http.StatusOK, gin.H{"message": "Announcement rejected"})
}

func (h *MentorHandlers) BlockStudent(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var a models.UserAction
	if !h.Bind(c, &a) {
		return
	}
	if err := p.API.BlockStudent(c.Request.Context(), a); err != nil {
		h.HandleError(c, err, "block student")
		return
	}
	h.Logger.Info("Student blocked", zap.String("student_id", a.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "Student blocked"})
}

func (h *MentorHandlers) Broadcast(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var a models.NewAnnouncement
	if !h.Bind(c, &a) {
		return
	}
	if err := p.API.BroadcastToStudents(c.Request.Context(), a); err != nil {
		h.HandleError(c, err, "broadcast announcement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement sent to your students"})
}
