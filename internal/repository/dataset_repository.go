package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/database"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

// ErrNoDataset is returned when no snapshot has been imported yet
var ErrNoDataset = errors.New("no dataset imported")

// DatasetRepository handles database operations for dataset snapshots
type DatasetRepository struct {
	db   *sql.DB
	keep int
}

// NewDatasetRepository creates a new dataset repository keeping the newest
// keep snapshots after each save
func NewDatasetRepository(db *sql.DB, keep int) *DatasetRepository {
	if keep < 1 {
		keep = 1
	}
	return &DatasetRepository{db: db, keep: keep}
}

// Save stores a snapshot with its rows and prunes older snapshots
func (r *DatasetRepository) Save(ctx context.Context, ds *models.Dataset) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO datasets
			(id, loaded_at, segments_url, stations_url, segment_count, station_count, rejected_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ds.ID, ds.LoadedAt.UnixMilli(), ds.SegmentsURL, ds.StationsURL,
			len(ds.Segments), len(ds.Stations), ds.Rejected,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}

		segStmt, err := tx.PrepareContext(ctx, `INSERT INTO track_segments
			(dataset_id, seq, section, track, start_km, end_km, forecast_year)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare segment insert: %w", err)
		}
		defer segStmt.Close()

		for i, s := range ds.Segments {
			if _, err := segStmt.ExecContext(ctx, ds.ID, i, s.Section, s.Track, s.StartKm, s.EndKm, s.ForecastYear); err != nil {
				return fmt.Errorf("failed to insert segment %d: %w", i, err)
			}
		}

		stStmt, err := tx.PrepareContext(ctx, `INSERT INTO stations
			(dataset_id, seq, section, name, pk)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare station insert: %w", err)
		}
		defer stStmt.Close()

		for i, s := range ds.Stations {
			if _, err := stStmt.ExecContext(ctx, ds.ID, i, s.Section, s.Name, s.PK); err != nil {
				return fmt.Errorf("failed to insert station %d: %w", i, err)
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE id NOT IN (
			SELECT id FROM datasets ORDER BY loaded_at DESC, rowid DESC LIMIT ?)`, r.keep)
		if err != nil {
			return fmt.Errorf("failed to prune datasets: %w", err)
		}

		return nil
	})
}

// LatestInfo retrieves the metadata of the newest snapshot
func (r *DatasetRepository) LatestInfo(ctx context.Context) (*models.DatasetInfo, error) {
	query := `SELECT id, loaded_at, segments_url, stations_url, segment_count, station_count, rejected_count
		FROM datasets ORDER BY loaded_at DESC, rowid DESC LIMIT 1`

	var info models.DatasetInfo
	var loadedAt int64
	err := r.db.QueryRowContext(ctx, query).Scan(
		&info.ID, &loadedAt, &info.SegmentsURL, &info.StationsURL,
		&info.SegmentCount, &info.StationCount, &info.Rejected,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	info.LoadedAt = time.UnixMilli(loadedAt).UTC()
	return &info, nil
}

// Latest retrieves the newest snapshot with all rows in source order
func (r *DatasetRepository) Latest(ctx context.Context) (*models.Dataset, error) {
	info, err := r.LatestInfo(ctx)
	if err != nil {
		return nil, err
	}

	segments, err := r.segments(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	stations, err := r.stations(ctx, info.ID)
	if err != nil {
		return nil, err
	}

	return &models.Dataset{
		ID:          info.ID,
		LoadedAt:    info.LoadedAt,
		SegmentsURL: info.SegmentsURL,
		StationsURL: info.StationsURL,
		Segments:    segments,
		Stations:    stations,
		Rejected:    info.Rejected,
	}, nil
}

func (r *DatasetRepository) segments(ctx context.Context, datasetID string) ([]models.TrackSegment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT section, track, start_km, end_km, forecast_year
		FROM track_segments WHERE dataset_id = ? ORDER BY seq`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []models.TrackSegment{}
	for rows.Next() {
		var s models.TrackSegment
		if err := rows.Scan(&s.Section, &s.Track, &s.StartKm, &s.EndKm, &s.ForecastYear); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

func (r *DatasetRepository) stations(ctx context.Context, datasetID string) ([]models.Station, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT section, name, pk
		FROM stations WHERE dataset_id = ? ORDER BY seq`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := []models.Station{}
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.Section, &s.Name, &s.PK); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// ListSegments retrieves segments of a snapshot with filtering and pagination
func (r *DatasetRepository) ListSegments(ctx context.Context, datasetID string, filter models.SegmentFilter) ([]models.TrackSegment, int64, error) {
	conditions := []string{"dataset_id = ?"}
	args := []interface{}{datasetID}

	// Add filters
	if filter.Section != "" {
		conditions = append(conditions, "section = ?")
		args = append(args, filter.Section)
	}
	if filter.Track > 0 {
		conditions = append(conditions, "track = ?")
		args = append(args, filter.Track)
	}
	if filter.MinYear > 0 {
		conditions = append(conditions, "forecast_year >= ?")
		args = append(args, filter.MinYear)
	}
	if filter.MaxYear > 0 {
		conditions = append(conditions, "forecast_year <= ?")
		args = append(args, filter.MaxYear)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	// Get total count
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM track_segments"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count segments: %w", err)
	}

	// Add pagination
	page, pageSize := NormalizePage(filter.Page, filter.PageSize)
	query := `SELECT section, track, start_km, end_km, forecast_year FROM track_segments` +
		where + " ORDER BY seq LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []models.TrackSegment{}
	for rows.Next() {
		var s models.TrackSegment
		if err := rows.Scan(&s.Section, &s.Track, &s.StartKm, &s.EndKm, &s.ForecastYear); err != nil {
			return nil, 0, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read segments: %w", err)
	}

	return segments, total, nil
}

// NormalizePage clamps pagination parameters
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}
