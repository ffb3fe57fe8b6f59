package admin

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

// Backend is the slice of the REST client the admin views use.
type Backend interface {
	Statistics(ctx context.Context) (models.Statistics, error)
	PendingStudents(ctx context.Context) ([]models.User, error)
	AdminPendingAnnouncements(ctx context.Context) ([]models.Announcement, error)
}

// Dashboard is the admin's home view.
type Dashboard struct {
	Statistics           models.Statistics     `json:"statistics"`
	PendingStudents      []models.User         `json:"pendingStudents"`
	PendingAnnouncements []models.Announcement `json:"pendingAnnouncements"`
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetDashboard(ctx context.Context, api Backend) (*Dashboard, error)
}

type ServiceImpl struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *ServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceImpl{logger: logger}
}

// GetDashboard loads statistics and both moderation queues concurrently.
func (s *ServiceImpl) GetDashboard(ctx context.Context, api Backend) (*Dashboard, error) {
	l := s.logger.With(zap.String("method", "GetDashboard"))
	d := &Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := api.Statistics(gctx)
		d.Statistics = stats
		return err
	})
	g.Go(func() error {
		students, err := api.PendingStudents(gctx)
		d.PendingStudents = students
		return err
	})
	g.Go(func() error {
		anns, err := api.AdminPendingAnnouncements(gctx)
		d.PendingAnnouncements = anns
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error("Failed to get admin dashboard", zap.Error(err))
		return nil, err
	}

	if d.PendingStudents == nil {
		d.PendingStudents = []models.User{}
	}
	if d.PendingAnnouncements == nil {
		d.PendingAnnouncements = []models.Announcement{}
	}
	l.Debug("Retrieved admin dashboard",
		zap.Int("pending_students", len(d.PendingStudents)),
		zap.Int("pending_announcements", len(d.PendingAnnouncements)))
	return d, nil
}
