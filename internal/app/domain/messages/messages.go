// Package messages serves conversations between a student and their mentor, including a live
// stream that polls the backend for new messages.
package messages

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-mentorportal/internal/app/domain"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-mentorportal/internal/app/streaming"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/cache"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/poller"
)

const (
	EventMessages    = "messages"
	EventStreamError = "error"
)

// Contact is someone the signed-in user can open a conversation with.
type Contact struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email,omitempty"`
	Role  models.Role `json:"role"`
}

type chatPoller = *poller.Poller[models.Message]

func chatName(with string) string { return "chat:" + with }

type MessagesHandlers struct {
	*domain.BaseHandler
	streams  *streaming.Manager
	interval time.Duration
}

func NewMessagesHandlers(streams *streaming.Manager, interval time.Duration, logger *zap.Logger) *MessagesHandlers {
	return &MessagesHandlers{
		BaseHandler: domain.NewBaseHandler(logger),
		streams:     streams,
		interval:    interval,
	}
}

// Contacts lists who the user can message: a student's mentor, a mentor's assigned students,
// or every mentor for an admin.
func (h *MessagesHandlers) Contacts(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	user, ok := p.Auth.User()
	if !ok {
		h.HandleError(c, models.ErrNoSession, "list contacts")
		return
	}
	ctx := c.Request.Context()

	contacts := []Contact{}
	switch user.Role {
	case models.RoleStudent:
		mentor, err := cache.Fetch(ctx, p.Cache, cache.KeyMentor, p.API.AssignedMentor)
		if err != nil {
			h.HandleError(c, err, "load mentor")
			return
		}
		if mentor != nil {
			contacts = append(contacts, mentorContact(*mentor))
		}
	case models.RoleMentor:
		students, err := p.API.AssignedStudents(ctx)
		if err != nil {
			h.HandleError(c, err, "load assigned students")
			return
		}
		for _, s := range students {
			contacts = append(contacts, Contact{ID: s.ID, Name: s.Name, Email: s.Email, Role: models.RoleStudent})
		}
	case models.RoleAdmin:
		mentors, err := p.API.Mentors(ctx)
		if err != nil {
			h.HandleError(c, err, "load mentors")
			return
		}
		for _, m := range mentors {
			contacts = append(contacts, mentorContact(m))
		}
	}
	h.RenderPage(c, "Messages - Mentor Portal", "Messages", gin.H{"contacts": contacts})
}

func mentorContact(m models.Mentor) Contact {
	return Contact{ID: m.ID, Name: m.Name, Email: m.Email, Role: models.RoleMentor}
}

// Conversation returns the messages exchanged with ?with=, oldest first.
func (h *MessagesHandlers) Conversation(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	with, ok := counterpart(c)
	if !ok {
		return
	}

	msgs, err := p.API.Conversation(c.Request.Context(), with)
	if err != nil {
		h.HandleError(c, err, "load conversation")
		return
	}
	ordered := poller.Merge(nil, msgs, models.MessageKey, models.MessageBefore)
	if ordered == nil {
		ordered = []models.Message{}
	}
	h.RenderPage(c, "Messages - Mentor Portal", "Messages", gin.H{"with": with, "messages": ordered})
}

func (h *MessagesHandlers) Send(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	var m models.OutgoingMessage
	if !h.Bind(c, &m) {
		return
	}

	sent, err := p.API.SendMessage(c.Request.Context(), m)
	if err != nil {
		h.HandleError(c, err, "send message")
		return
	}
	for _, chat := range streaming.Lookup[chatPoller](h.streams, p.ID, chatName(m.ReceiverID)) {
		chat.Upsert(sent)
	}
	h.Logger.Debug("Message sent", zap.String("profile_id", p.ID), zap.String("receiver_id", m.ReceiverID))
	c.JSON(http.StatusCreated, gin.H{"message": sent})
}

// Stream pushes the merged conversation with ?with= every time the backend is polled. A failed
// poll sends an error event and keeps the stream open with the last known messages.
func (h *MessagesHandlers) Stream(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	with, ok := counterpart(c)
	if !ok {
		return
	}

	ctx, release := h.streams.Open(c.Request.Context(), p.ID)
	defer release()
	defer metrics.StreamOpened(ctx, "chat")()

	l := h.Logger.With(zap.String("profile_id", p.ID), zap.String("with", with))
	events := make(chan streaming.Event, 1)
	fetch := func(ctx context.Context) ([]models.Message, error) {
		msgs, err := p.API.Conversation(ctx, with)
		if err != nil {
			streaming.Offer(events, streaming.ErrorEvent(EventStreamError, err))
		}
		return msgs, err
	}
	var chat chatPoller
	emit := func(items []models.Message) {
		if items == nil {
			items = []models.Message{}
		}
		ev := streaming.NewEvent(EventMessages, items)
		ev.Loading, ev.Refreshing = chat.Loading(), chat.Refreshing()
		streaming.Offer(events, ev)
	}
	chat = poller.New("chat", h.interval, fetch, models.MessageKey,
		poller.WithOrder(models.MessageBefore),
		poller.WithLogger[models.Message](l),
		poller.OnUpdate(emit),
		poller.OnRefresh[models.Message](func() { emit(chat.Snapshot()) }),
	)
	defer h.streams.Register(p.ID, chatName(with), chat)()

	emit(nil)
	chat.Start(ctx)
	defer chat.Stop()

	l.Info("Chat stream opened")
	streaming.Serve(ctx, c, events, l)
	l.Info("Chat stream closed")
}

// RefreshStream polls the conversation with ?with= now for every chat stream this browser has
// open on it. The result reaches the browser through the stream.
func (h *MessagesHandlers) RefreshStream(c *gin.Context) {
	p, ok := h.Profile(c)
	if !ok {
		return
	}
	with, ok := counterpart(c)
	if !ok {
		return
	}

	live := streaming.Lookup[chatPoller](h.streams, p.ID, chatName(with))
	if len(live) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No open chat stream"})
		return
	}
	for _, chat := range live {
		if err := chat.Refresh(c.Request.Context()); err != nil {
			h.HandleError(c, err, "refresh conversation")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": len(live)})
}

func counterpart(c *gin.Context) (string, bool) {
	with := c.Query("with")
	if with == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'with' is required"})
		return "", false
	}
	return with, true
}
