package apiclient

import (
	"context"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

// AssignedMentor returns nil when no mentor has been assigned yet.
func (c *Client) AssignedMentor(ctx context.Context) (*models.Mentor, error) {
	var out *models.Mentor
	err := c.get(ctx, "/student/mentor", nil, &out)
	return out, err
}

func (c *Client) Directory(ctx context.Context) ([]models.DirectoryEntry, error) {
	var out []models.DirectoryEntry
	err := c.get(ctx, "/student/directory", nil, &out)
	return out, err
}

func (c *Client) Colleges(ctx context.Context) ([]models.ReferenceItem, error) {
	return c.referenceList(ctx, "/student/colleges")
}

func (c *Client) Cities(ctx context.Context) ([]models.ReferenceItem, error) {
	return c.referenceList(ctx, "/student/cities")
}

func (c *Client) Batches(ctx context.Context) ([]models.ReferenceItem, error) {
	return c.referenceList(ctx, "/student/batches")
}

func (c *Client) referenceList(ctx context.Context, path string) ([]models.ReferenceItem, error) {
	var out []models.ReferenceItem
	err := c.get(ctx, path, nil, &out)
	return out, err
}
