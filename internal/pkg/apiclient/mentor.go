package apiclient

import (
	"context"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

func (c *Client) MentorPendingAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	err := c.get(ctx, "/mentor/pending-announcements", nil, &out)
	return out, err
}

func (c *Client) AssignedStudents(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.get(ctx, "/mentor/assigned-students", nil, &out)
	return out, err
}

func (c *Client) ApproveAnnouncement(ctx context.Context, d models.ModerationDecision) error {
	return c.post(ctx, "/mentor/approve-announcement", d, nil)
}

func (c *Client) RejectAnnouncement(ctx context.Context, d models.ModerationDecision) error {
	return c.post(ctx, "/mentor/reject-announcement", d, nil)
}

func (c *Client) BlockStudent(ctx context.Context, a models.UserAction) error {
	return c.post(ctx, "/mentor/block-student", a, nil)
}

func (c *Client) BroadcastToStudents(ctx context.Context, a models.NewAnnouncement) error {
	return c.post(ctx, "/mentor/broadcast-to-students", a, nil)
}
