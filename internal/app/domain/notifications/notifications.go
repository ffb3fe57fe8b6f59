package notifications

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/poller"
)

const (
	EventNotifications = "notifications"
	EventStreamError   = "error"
)

const liveName = "notifications"

type feedPoller = *poller.Poller[models.Notification]

// Feed is the payload of the notifications view and of every stream event.
type Feed struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

type NotificationsHandlers struct {
	*domain.BaseHandler
	streams  *streaming.Manager
	interval time.Duration
}

func NewNotificationsHandlers(streams *streaming.Manager, interval time.Duration, logger *zap.Logger) *NotificationsHandlers {
	return &NotificationsHandlers{
		BaseHandler: domain.NewBaseHandler(logger),
		streams:     streams,
		interval:    interval,
	}
}

func (h *NotificationsHandlers) List(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	items, err := p.API.Notifications(ctx)
	if err != nil {
		h.HandleError(c, err, "load notifications")
		return
	}
	unread, err := p.API.UnreadCount(ctx)
	if err != nil {
		h.HandleError(c, err, "load unread count")
		return
	}
	h.RenderPage(c, "Notifications - Mentor Portal", "Notifications", newFeed(items, unread))
}

func (h *NotificationsHandlers) UnreadCount(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	n, err := p.API.UnreadCount(c.Request.Context())
	if err != nil {
		h.HandleError(c, err, "load unread count")
		return
	}
	c.JSON(http.StatusOK, models.UnreadCount{Count: n})
}

func (h *NotificationsHandlers) MarkRead(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	if err := p.API.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err, "mark notification as read")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationsHandlers) MarkAllRead(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	if err := p.API.MarkAllRead(c.Request.Context()); err != nil {
		h.HandleError(c, err, "mark notifications as read")
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream pushes the merged notification list, newest first, with the unread count on every
// poll. Notifications already seen stay in the list after the backend stops returning them.
func (h *NotificationsHandlers) Stream(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}

	ctx, release := h.streams.Open(c.Request.Context(), p.ID)
	defer release()
	defer metrics.StreamOpened(ctx, "notifications")()

	l := h.Logger.With(zap.String("profile_id", p.ID))
	events := make(chan streaming.Event, 1)
	var unread atomic.Int64

	fetch := func(ctx context.Context) ([]models.Notification, error) {
		n, err := p.API.UnreadCount(ctx)
		if err == nil {
			unread.Store(int64(n))
			var items []models.Notification
			items, err = p.API.Notifications(ctx)
			if err == nil {
				return items, nil
			}
		}
		streaming.Offer(events, streaming.ErrorEvent(EventStreamError, err))
		return nil, err
	}
	var feed feedPoller
	emit := func(items []models.Notification) {
		ev := streaming.NewEvent(EventNotifications, newFeed(items, int(unread.Load())))
		ev.Loading, ev.Refreshing = feed.Loading(), feed.Refreshing()
		streaming.Offer(events, ev)
	}
	feed = poller.New(liveName, h.interval, fetch, models.NotificationKey,
		poller.WithOrder(models.NotificationAfter),
		poller.WithLogger[models.Notification](l),
		poller.OnUpdate(emit),
		poller.OnRefresh[models.Notification](func() { emit(feed.Snapshot()) }),
	)
	defer h.streams.Register(p.ID, liveName, feed)()

	emit(nil)
	feed.Start(ctx)
	defer feed.Stop()

	streaming.Serve(ctx, c, events, l)
}

// RefreshStream polls now for every notification stream this browser has open.
func (h *NotificationsHandlers) RefreshStream(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}

	live := streaming.Lookup[feedPoller](h.streams, p.ID, liveName)
	if len(live) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No open notification stream"})
		return
	}
	for _, feed := range live {
		if err := feed.Refresh(c.Request.Context()); err != nil {
			h.HandleError(c, err, "refresh notifications")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": len(live)})
}

func newFeed(items []models.Notification, unread int) Feed {
	if items == nil {
		items = []models.Notification{}
	}
	return Feed{Notifications: items, Unread: unread}
}
