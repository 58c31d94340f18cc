package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/cache"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/renovation"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/repository"
)

var (
	// ErrNoDataset is returned before the first import
	ErrNoDataset = repository.ErrNoDataset

	ErrSectionNotFound = errors.New("section not found")
	ErrInvalidTrack    = errors.New("track must be 1 or 2")
	ErrInvalidInterval = errors.New("interval start after end")
)

// DatasetStore persists dataset snapshots
type DatasetStore interface {
	Save(ctx context.Context, ds *models.Dataset) error
	Latest(ctx context.Context) (*models.Dataset, error)
	ListSegments(ctx context.Context, datasetID string, filter models.SegmentFilter) ([]models.TrackSegment, int64, error)
}

// Fetcher loads a fresh snapshot from upstream
type Fetcher interface {
	Load(ctx context.Context) (*models.Dataset, error)
}

// RenovationService handles business logic for renovation planning
type RenovationService struct {
	store   DatasetStore
	fetcher Fetcher
	cache   *cache.DatasetCache
	opts    renovation.Options
	logger  *zap.Logger
}

// NewRenovationService creates a new renovation service reading through a
// cache backed by the store
func NewRenovationService(store DatasetStore, fetcher Fetcher, opts renovation.Options, logger *zap.Logger) *RenovationService {
	return &RenovationService{
		store:   store,
		fetcher: fetcher,
		cache:   cache.NewDatasetCache(store.Latest),
		opts:    opts,
		logger:  logger,
	}
}

// Options returns the summary options in use
func (s *RenovationService) Options() renovation.Options {
	return s.opts
}

// DatasetState reports whether a snapshot is live
func (s *RenovationService) DatasetState() string {
	return s.cache.State().String()
}

// Warmup loads the stored snapshot, importing from upstream when the store is
// empty and autoImport is set
func (s *RenovationService) Warmup(ctx context.Context, autoImport bool) error {
	_, err := s.cache.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNoDataset) || !autoImport {
		return err
	}

	s.logger.Info("store is empty, importing datasets")
	_, err = s.Refresh(ctx)
	return err
}

// Refresh imports a new snapshot from upstream and makes it live
func (s *RenovationService) Refresh(ctx context.Context) (*models.DatasetInfo, error) {
	ds, err := s.fetcher.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}

	if err := s.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to save dataset: %w", err)
	}
	s.cache.Set(ds)

	info := ds.Info()
	s.logger.Info("dataset refreshed",
		zap.String("dataset_id", info.ID),
		zap.Int("segments", info.SegmentCount),
		zap.Int("stations", info.StationCount),
	)
	return &info, nil
}

// Dataset returns the live snapshot metadata
func (s *RenovationService) Dataset(ctx context.Context) (*models.DatasetInfo, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	info := ds.Info()
	return &info, nil
}

// Sections lists the section codes in source order
func (s *RenovationService) Sections(ctx context.Context) ([]string, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return renovation.Sections(ds.Segments), nil
}

// Groups returns the grouped runs of a section; track 0 returns every track
func (s *RenovationService) Groups(ctx context.Context, section string, track int) ([]models.TrackRuns, error) {
	if track != 0 && track != models.Track1 && track != models.Track2 {
		return nil, ErrInvalidTrack
	}

	segments, err := s.sectionSegments(ctx, section)
	if err != nil {
		return nil, err
	}

	tracks := renovation.Tracks(segments, section)
	if track != 0 {
		tracks = []int{track}
	}

	runs := make([]models.TrackRuns, 0, len(tracks))
	for _, t := range tracks {
		runs = append(runs, models.TrackRuns{
			Section: section,
			Track:   t,
			Groups:  renovation.GroupTrack(segments, section, t),
		})
	}
	return runs, nil
}

// Summary returns the figures of one section
func (s *RenovationService) Summary(ctx context.Context, section string) (*models.SectionSummary, error) {
	segments, err := s.sectionSegments(ctx, section)
	if err != nil {
		return nil, err
	}
	summary := renovation.Summarize(segments, section, s.opts)
	return &summary, nil
}

// Interval returns the figure of a custom forecast window within a section
func (s *RenovationService) Interval(ctx context.Context, section string, from, to int) (*models.WindowFigure, error) {
	if from > to {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidInterval, from, to)
	}
	segments, err := s.sectionSegments(ctx, section)
	if err != nil {
		return nil, err
	}
	fig := renovation.Interval(segments, section, from, to, s.opts.Places)
	return &fig, nil
}

// LineSummary returns the figures of the whole line
func (s *RenovationService) LineSummary(ctx context.Context) (*models.LineSummary, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	line := renovation.SummarizeLine(ds.Segments, s.opts)
	return &line, nil
}

// LineRuns returns the grouped runs of every (section, track) pair
func (s *RenovationService) LineRuns(ctx context.Context) ([]models.TrackRuns, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return renovation.GroupAll(ds.Segments), nil
}

// Stations lists the stations of a section; an empty section lists all
func (s *RenovationService) Stations(ctx context.Context, section string) ([]models.Station, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if section == "" {
		return ds.Stations, nil
	}
	return lo.Filter(ds.Stations, func(st models.Station, _ int) bool {
		return st.Section == section
	}), nil
}

// Segments returns a filtered page of the segment table
func (s *RenovationService) Segments(ctx context.Context, filter models.SegmentFilter) (*models.SegmentPage, error) {
	if filter.Track != 0 && filter.Track != models.Track1 && filter.Track != models.Track2 {
		return nil, ErrInvalidTrack
	}
	if filter.MinYear > 0 && filter.MaxYear > 0 && filter.MinYear > filter.MaxYear {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidInterval, filter.MinYear, filter.MaxYear)
	}

	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.store.ListSegments(ctx, ds.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}

	page, pageSize := repository.NormalizePage(filter.Page, filter.PageSize)
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &models.SegmentPage{
		Data:       rows,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *RenovationService) sectionSegments(ctx context.Context, section string) ([]models.TrackSegment, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	segments := lo.Filter(ds.Segments, func(r models.TrackSegment, _ int) bool {
		return r.Section == section
	})
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, section)
	}
	return segments, nil
}
