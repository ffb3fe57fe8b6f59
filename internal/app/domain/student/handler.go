// Package student serves the student dashboard and directory.
package student

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
)

type StudentHandlers struct {
	*domain.BaseHandler
	service  *Service
	pageSize int
}

func NewStudentHandlers(service *Service, pageSize int, logger *zap.Logger) *StudentHandlers {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &StudentHandlers{BaseHandler: domain.NewBaseHandler(logger), service: service, pageSize: pageSize}
}

func (h *StudentHandlers) Dashboard(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	d, err := h.service.Dashboard(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err, "load dashboard")
		return
	}
	h.RenderPage(c, "Dashboard - Mentor Portal", "Dashboard", d)
}

// Directory accepts college, city, batch, q and page query parameters.
func (h *StudentHandlers) Directory(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var f DirectoryFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	res, err := h.service.Directory(c.Request.Context(), p, f, page, h.pageSize)
	if err != nil {
		h.HandleError(c, err, "load directory")
		return
	}
	h.RenderPage(c, "Directory - Mentor Portal", "Directory", res)
}

func (h *StudentHandlers) References(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	refs, err := h.service.References(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err, "load reference lists")
		return
	}
	c.JSON(http.StatusOK, refs)
}

// Reference serves one list; the key is the last path segment (colleges, cities, batches).
func (h *StudentHandlers) Reference(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := h.Profile(c)
		if !ok {
			return
		}
		items, err := h.service.Reference(c.Request.Context(), p, key)
		if err != nil {
			h.HandleError(c, err, "load "+key)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// Mentor shows the assigned mentor, null until one is assigned.
func (h *StudentHandlers) Mentor(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	m, err := h.service.Mentor(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err, "load mentor")
		return
	}
	h.RenderPage(c, "My mentor - Mentor Portal", "Dashboard", gin.H{"mentor": m})
}
