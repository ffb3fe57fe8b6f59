package apiclient

import (
	"context"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

// Feed lists approved announcements.
func (c *Client) Feed(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	err := c.get(ctx, "/announcements/feed", nil, &out)
	return out, err
}

func (c *Client) MyAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	err := c.get(ctx, "/announcements/my-announcements", nil, &out)
	return out, err
}

// CreateAnnouncement submits a post for approval.
func (c *Client) CreateAnnouncement(ctx context.Context, a models.NewAnnouncement) (models.Announcement, error) {
	var out models.Announcement
	err := c.post(ctx, "/announcements/create", a, &out)
	return out, err
}
