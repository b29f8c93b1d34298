package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// WeatherSampleRepo implements ports.WeatherSampleRepository with pgx and PostGIS.
type WeatherSampleRepo struct {
	db *DB
}

// NewWeatherSampleRepo creates a new WeatherSampleRepo.
func NewWeatherSampleRepo(db *DB) *WeatherSampleRepo {
	return &WeatherSampleRepo{db: db}
}

const upsertWeatherSample = `
	INSERT INTO weather_samples (station, location, wind_direction, wind_speed, observed_at)
	VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5, $6)
	ON CONFLICT (station, observed_at) DO UPDATE
	SET location = EXCLUDED.location,
	    wind_direction = EXCLUDED.wind_direction,
	    wind_speed = EXCLUDED.wind_speed
`

// UpsertBatch inserts many samples using pgx.Batch.
func (r *WeatherSampleRepo) UpsertBatch(ctx context.Context, samples []domain.WeatherSample) error {
	if len(samples) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range samples {
		batch.Queue(upsertWeatherSample,
			s.Station, s.Coord.Lon, s.Coord.Lat, s.WindDirection, s.WindSpeed, s.ObservedAt)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range samples {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// InBounds returns the most recent sample of every station inside the box.
// A box crossing the antimeridian is queried as two envelopes.
func (r *WeatherSampleRepo) InBounds(ctx context.Context, b domain.Bounds, limit int) ([]domain.WeatherSample, error) {
	filter, filterArgs := envelopeFilter(b, 2)
	args := append([]any{limit}, filterArgs...)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT ON (station)
		       id::text, station,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       wind_direction, wind_speed, observed_at
		FROM weather_samples
		WHERE `+filter+`
		ORDER BY station, observed_at DESC
		LIMIT $1
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSamples(rows)
}

// List returns a page of samples, newest first, with the total matching count.
func (r *WeatherSampleRepo) List(ctx context.Context, b *domain.Bounds, offset, limit int) ([]domain.WeatherSample, int, error) {
	where, filterArgs := "", []any(nil)
	if b != nil {
		var filter string
		filter, filterArgs = envelopeFilter(*b, 1)
		where = "WHERE " + filter
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM weather_samples `+where, filterArgs...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wind samples: %w", err)
	}

	n := len(filterArgs)
	args := append(filterArgs, limit, offset)
	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT id::text, station,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       wind_direction, wind_speed, observed_at
		FROM weather_samples
		%s
		ORDER BY observed_at DESC, station
		LIMIT $%d OFFSET $%d
	`, where, n+1, n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	if err != nil {
		return nil, 0, err
	}
	return samples, total, nil
}

// envelopeFilter builds a WHERE fragment matching any envelope of the box.
// Placeholders are numbered from firstArg.
func envelopeFilter(b domain.Bounds, firstArg int) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	for _, e := range b.Envelopes() {
		n := firstArg + len(args)
		clauses = append(clauses, fmt.Sprintf(
			"location::geometry && ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326)", n, n+1, n+2, n+3))
		args = append(args, e.MinLon, e.MinLat, e.MaxLon, e.MaxLat)
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

func scanSamples(rows pgx.Rows) ([]domain.WeatherSample, error) {
	var samples []domain.WeatherSample
	for rows.Next() {
		var s domain.WeatherSample
		if err := rows.Scan(
			&s.ID, &s.Station,
			&s.Coord.Lat, &s.Coord.Lon,
			&s.WindDirection, &s.WindSpeed, &s.ObservedAt,
		); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
