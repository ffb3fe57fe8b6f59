package apiclient

import (
	"context"
	"net/url"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

func (c *Client) Students(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.get(ctx, "/admin/students", nil, &out)
	return out, err
}

func (c *Client) Mentors(ctx context.Context) ([]models.Mentor, error) {
	var out []models.Mentor
	err := c.get(ctx, "/admin/mentors", nil, &out)
	return out, err
}

func (c *Client) Statistics(ctx context.Context) (models.Statistics, error) {
	var out models.Statistics
	err := c.get(ctx, "/admin/statistics", nil, &out)
	return out, err
}

func (c *Client) PendingStudents(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.get(ctx, "/admin/pending-students", nil, &out)
	return out, err
}

func (c *Client) AdminPendingAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	err := c.get(ctx, "/admin/pending-announcements", nil, &out)
	return out, err
}

func (c *Client) ApproveStudent(ctx context.Context, a models.UserAction) error {
	return c.post(ctx, "/admin/approve-student", a, nil)
}

func (c *Client) BlockUser(ctx context.Context, a models.UserAction) error {
	return c.post(ctx, "/admin/block-user", a, nil)
}

func (c *Client) SendAnnouncement(ctx context.Context, a models.NewAnnouncement) error {
	return c.post(ctx, "/admin/send-announcement", a, nil)
}

func (c *Client) AddMentor(ctx context.Context, m models.NewMentor) (models.Mentor, error) {
	var out models.Mentor
	err := c.post(ctx, "/admin/add-mentor", m, &out)
	return out, err
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	return c.delete(ctx, "/admin/announcements/"+url.PathEscape(id), nil)
}
