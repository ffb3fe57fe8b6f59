package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/apiclient"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/guard"
)

type NavItem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

var (
	offlineNav = []NavItem{
		{Name: "Home", URL: "/"},
		{Name: "Sign in", URL: "/login"},
	}
	studentNav = []NavItem{
		{Name: "Dashboard", URL: "/student/dashboard"},
		{Name: "Directory", URL: "/student/directory"},
		{Name: "Announcements", URL: "/announcements/feed"},
		{Name: "Messages", URL: "/messages"},
		{Name: "Profile", URL: "/profile"},
	}
	mentorNav = []NavItem{
		{Name: "Dashboard", URL: "/mentor/dashboard"},
		{Name: "Announcements", URL: "/announcements/feed"},
		{Name: "Messages", URL: "/messages"},
		{Name: "Profile", URL: "/profile"},
	}
	adminNav = []NavItem{
		{Name: "Dashboard", URL: "/admin/dashboard"},
		{Name: "Students", URL: "/admin/students"},
		{Name: "Mentors", URL: "/admin/mentors"},
		{Name: "Messages", URL: "/messages"},
		{Name: "Profile", URL: "/profile"},
	}
)

// NavFor returns the navigation of the given user, the signed-out one for nil.
func NavFor(u *models.User) []NavItem {
	if u == nil {
		return offlineNav
	}
	switch u.Role {
	case models.RoleStudent:
		return studentNav
	case models.RoleMentor:
		return mentorNav
	case models.RoleAdmin:
		return adminNav
	}
	return offlineNav
}

// HomeFor is where a user of role lands after signing in.
func HomeFor(role models.Role) string {
	switch role {
	case models.RoleStudent:
		return "/student/dashboard"
	case models.RoleMentor:
		return "/mentor/dashboard"
	case models.RoleAdmin:
		return "/admin/dashboard"
	}
	return "/"
}

// UserView is a user with display labels.
type UserView struct {
	models.User
	RoleLabel   string `json:"roleLabel"`
	StatusLabel string `json:"statusLabel"`
}

func NewUserView(u models.User) *UserView {
	return &UserView{User: u, RoleLabel: u.Role.Label(), StatusLabel: u.Status.Label()}
}

// Page is the view-model every guarded view answers with.
type Page struct {
	Title     string    `json:"title"`
	ActiveNav string    `json:"activeNav"`
	Nav       []NavItem `json:"nav"`
	User      *UserView `json:"user,omitempty"`
	Data      any       `json:"data,omitempty"`
}

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseHandler{Logger: logger}
}

// Profile returns the request's browser profile. Handlers are only mounted behind
// ProfileMiddleware, so a missing profile is a wiring bug answered with 500.
func (h *BaseHandler) Profile(c *gin.Context) (*middleware.Profile, bool) {
	p, ok := middleware.ProfileFromContext(c)
	if !ok {
		h.Logger.Error("Profile missing from context", zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Profile unavailable"})
	}
	return p, ok
}

func (h *BaseHandler) NewPage(c *gin.Context, title, activeNav string, data any) Page {
	page := Page{Title: title, ActiveNav: activeNav, Data: data}
	if u, ok := guard.UserFromContext(c); ok {
		page.User = NewUserView(u)
		page.Nav = NavFor(&u)
	} else if p, ok := middleware.ProfileFromContext(c); ok {
		if u, ok := p.Auth.User(); ok {
			page.User = NewUserView(u)
			page.Nav = NavFor(&u)
		}
	}
	if page.Nav == nil {
		page.Nav = NavFor(nil)
	}
	return page
}

func (h *BaseHandler) RenderPage(c *gin.Context, title, activeNav string, data any) {
	c.JSON(http.StatusOK, h.NewPage(c, title, activeNav, data))
}

// Redirect sends HTMX callers an HX-Redirect and everyone else a JSON body naming the target.
func (h *BaseHandler) Redirect(c *gin.Context, status int, location string, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["redirect"] = location
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", location)
	}
	c.JSON(status, body)
}

// Bind decodes the request body (JSON or form) into req and answers 400 with per-field
// messages when it does not validate.
func (h *BaseHandler) Bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[lowerFirst(fe.Field())] = fieldMessage(fe)
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// HandleError maps an error from the backend or from local validation onto the response.
// Backend messages are passed through verbatim.
func (h *BaseHandler) HandleError(c *gin.Context, err error, operation string) {
	status := apiclient.StatusOf(err)
	switch {
	case status != 0:
		h.Logger.Warn("Backend rejected request",
			zap.String("operation", operation),
			zap.Int("status", status),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": apiclient.MessageOf(err)})
	case apiclient.IsTransport(err):
		h.Logger.Error("Backend unreachable", zap.String("operation", operation), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": apiclient.MessageOf(err)})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
	case errors.Is(err, models.ErrNoSession), errors.Is(err, models.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, models.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, models.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		h.Logger.Error("Operation failed", zap.String("operation", operation), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to %s", operation),
		})
	}
}

// userMessage drops the sentinel prefix of a wrapped validation error.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	return "Invalid value"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
