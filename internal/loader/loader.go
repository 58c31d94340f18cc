package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/renovation"
)

// maxBodyBytes caps an upstream dataset
const maxBodyBytes = 64 << 20

// Config holds the loader configuration
type Config struct {
	SegmentsURL string // http(s) URL or local file path
	StationsURL string
	Timeout     time.Duration
	Fields      FieldMapping
}

// Loader fetches and decodes both upstream datasets
type Loader struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a loader. A zero Fields mapping uses DefaultFieldMapping.
func New(cfg Config, logger *zap.Logger) *Loader {
	if cfg.Fields == (FieldMapping{}) {
		cfg.Fields = DefaultFieldMapping()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Load fetches both datasets concurrently and returns a new snapshot
func (l *Loader) Load(ctx context.Context) (*models.Dataset, error) {
	var segRaw, stRaw []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.fetch(gctx, l.cfg.SegmentsURL)
		if err != nil {
			return fmt.Errorf("failed to fetch segments: %w", err)
		}
		segRaw = data
		return nil
	})
	g.Go(func() error {
		data, err := l.fetch(gctx, l.cfg.StationsURL)
		if err != nil {
			return fmt.Errorf("failed to fetch stations: %w", err)
		}
		stRaw = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	segments, rejected, err := ParseSegments(segRaw, l.cfg.Fields, renovation.Validate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse segments: %w", err)
	}
	for _, r := range rejected {
		l.logger.Debug("segment row rejected", zap.Int("row", r.Row), zap.Error(r.Err))
	}

	stations, droppedStations, err := ParseStations(stRaw, l.cfg.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stations: %w", err)
	}

	ds := &models.Dataset{
		ID:          uuid.NewString(),
		LoadedAt:    time.Now().UTC(),
		SegmentsURL: l.cfg.SegmentsURL,
		StationsURL: l.cfg.StationsURL,
		Segments:    segments,
		Stations:    stations,
		Rejected:    len(rejected),
	}

	l.logger.Info("datasets loaded",
		zap.String("dataset_id", ds.ID),
		zap.Int("segments", len(segments)),
		zap.Int("rejected_segments", len(rejected)),
		zap.Int("stations", len(stations)),
		zap.Int("rejected_stations", len(droppedStations)),
	)
	if len(rejected) > 0 {
		l.logger.Warn("invalid segment rows dropped", zap.Int("count", len(rejected)))
	}

	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(strings.TrimPrefix(src, "file://"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, src)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
