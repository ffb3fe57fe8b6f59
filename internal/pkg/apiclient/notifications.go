package apiclient

import (
	"context"
	"net/url"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := c.get(ctx, "/notifications", nil, &out)
	return out, err
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out models.UnreadCount
	err := c.get(ctx, "/notifications/unread-count", nil, &out)
	return out.Count, err
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.put(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.put(ctx, "/notifications/read-all", nil, nil)
}
