package apiclient

import (
	"context"
	"net/url"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

// Conversation returns the messages exchanged with the counterpart.
func (c *Client) Conversation(ctx context.Context, with string) ([]models.Message, error) {
	var out []models.Message
	err := c.get(ctx, "/messages/conversation", url.Values{"with": {with}}, &out)
	return out, err
}

// SendMessage returns the stored message.
func (c *Client) SendMessage(ctx context.Context, m models.OutgoingMessage) (models.Message, error) {
	var out models.Message
	err := c.post(ctx, "/messages/send", m, &out)
	return out, err
}
