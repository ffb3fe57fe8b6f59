// Package profiles serves the signed-in user's own profile.
package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/cache"
)

type ProfilesHandler struct {
	*domain.BaseHandler
}

func NewProfilesHandler(logger *zap.Logger) *ProfilesHandler {
	return &ProfilesHandler{BaseHandler: domain.NewBaseHandler(logger)}
}

func (h *ProfilesHandler) GetProfile(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	user, err := p.API.Profile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "load profile")
		return
	}
	h.RenderPage(c, "Profile - Mentor Portal", "Profile", domain.NewUserView(user))
}

// UpdateProfile saves the form and adopts the user the backend sends back.
func (h *ProfilesHandler) UpdateProfile(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var upd models.ProfileUpdate
	if !h.Bind(c, &upd) {
		return
	}

	ctx := c.Request.Context()
	user, err := p.API.UpdateProfile(ctx, upd)
	if err != nil {
		h.HandleError(c, err, "update profile")
		return
	}
	if err := p.Auth.SetUser(ctx, user); err != nil {
		h.HandleError(c, err, "update session")
		return
	}
	// the directory lists this user's college, city and batch
	p.Cache.Invalidate(ctx, cache.KeyDirectory)
	h.Logger.Info("Profile updated", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, domain.NewUserView(user))
}
