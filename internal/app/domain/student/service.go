package student

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-mentorportal/internal/app/middleware"
	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
	"github.com/FACorreiaa/go-mentorportal/internal/pkg/cache"
)

// Dashboard is the student's home view.
type Dashboard struct {
	Mentor          *models.Mentor        `json:"mentor"`
	Feed            []models.Announcement `json:"feed"`
	MyAnnouncements []models.Announcement `json:"myAnnouncements"`
}

// References are the directory filter options.
type References struct {
	Colleges []models.ReferenceItem `json:"colleges"`
	Cities   []models.ReferenceItem `json:"cities"`
	Batches  []models.ReferenceItem `json:"batches"`
}

// Service loads student data through the profile's cache.
type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

func (s *Service) Dashboard(ctx context.Context, p *middleware.Profile) (Dashboard, error) {
	l := s.logger.With(zap.String("method", "Dashboard"), zap.String("profile_id", p.ID))
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.Mentor(gctx, p)
		d.Mentor = m
		return err
	})
	g.Go(func() error {
		feed, err := p.API.Feed(gctx)
		d.Feed = feed
		return err
	})
	g.Go(func() error {
		mine, err := p.API.MyAnnouncements(gctx)
		d.MyAnnouncements = mine
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error("Failed to load dashboard", zap.Error(err))
		return Dashboard{}, err
	}

	if d.Feed == nil {
		d.Feed = []models.Announcement{}
	}
	if d.MyAnnouncements == nil {
		d.MyAnnouncements = []models.Announcement{}
	}
	return d, nil
}

// Mentor returns the assigned mentor, nil until one is assigned.
func (s *Service) Mentor(ctx context.Context, p *middleware.Profile) (*models.Mentor, error) {
	return cache.Fetch(ctx, p.Cache, cache.KeyMentor, p.API.AssignedMentor)
}

// Directory filters and pages the cached directory.
func (s *Service) Directory(ctx context.Context, p *middleware.Profile, f DirectoryFilter, page, size int) (DirectoryPage, error) {
	all, err := cache.Fetch(ctx, p.Cache, cache.KeyDirectory, p.API.Directory)
	if err != nil {
		s.logger.Error("Failed to load directory", zap.String("profile_id", p.ID), zap.Error(err))
		return DirectoryPage{}, err
	}
	res := Paginate(FilterDirectory(all, f), page, size)
	res.Filter = f
	return res, nil
}

func (s *Service) References(ctx context.Context, p *middleware.Profile) (References, error) {
	var r References
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.Reference(gctx, p, cache.KeyColleges)
		r.Colleges = v
		return err
	})
	g.Go(func() error {
		v, err := s.Reference(gctx, p, cache.KeyCities)
		r.Cities = v
		return err
	})
	g.Go(func() error {
		v, err := s.Reference(gctx, p, cache.KeyBatches)
		r.Batches = v
		return err
	})
	if err := g.Wait(); err != nil {
		return References{}, err
	}
	return r, nil
}

// Reference returns one reference list by its cache key.
func (s *Service) Reference(ctx context.Context, p *middleware.Profile, key string) ([]models.ReferenceItem, error) {
	var load func(context.Context) ([]models.ReferenceItem, error)
	switch key {
	case cache.KeyColleges:
		load = p.API.Colleges
	case cache.KeyCities:
		load = p.API.Cities
	case cache.KeyBatches:
		load = p.API.Batches
	default:
		return nil, models.ErrNotFound
	}

	items, err := cache.Fetch(ctx, p.Cache, key, load)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ReferenceItem{}
	}
	return items, nil
}
