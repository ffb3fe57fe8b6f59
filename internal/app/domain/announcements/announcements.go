// Package announcements serves the approved feed and the user's own submissions.
package announcements

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

type AnnouncementsHandlers struct {
	*domain.BaseHandler
}

func NewAnnouncementsHandlers(logger *zap.Logger) *AnnouncementsHandlers {
	return &AnnouncementsHandlers{BaseHandler: domain.NewBaseHandler(logger)}
}

func (h *AnnouncementsHandlers) Feed(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	feed, err := p.API.Feed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "load announcements")
		return
	}
	h.RenderPage(c, "Announcements - Mentor Portal", "Announcements", gin.H{"announcements": nonNil(feed)})
}

func (h *AnnouncementsHandlers) Mine(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	mine, err := p.API.MyAnnouncements(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "load your announcements")
		return
	}
	h.RenderPage(c, "My announcements - Mentor Portal", "Announcements", gin.H{"announcements": nonNil(mine)})
}

// Create submits a post; it shows up in the feed once approved.
func (h *AnnouncementsHandlers) Create(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var req models.NewAnnouncement
	if !h.Bind(c, &req) {
		return
	}
	created, err := p.API.CreateAnnouncement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err, "create announcement")
		return
	}
	h.Logger.Info("Announcement submitted", zap.String("announcement_id", created.ID))
	c.JSON(http.StatusCreated, created)
}

func nonNil(a []models.Announcement) []models.Announcement {
	if a == nil {
		return []models.Announcement{}
	}
	return a
}
