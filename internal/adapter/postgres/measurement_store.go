package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"growthtrack/internal/domain"
)

var _ domain.MeasurementStore = (*DB)(nil)

const measurementColumns = "id, subject_id, owner_id, measured_at, type, value, unit, percentile, z_score, source, device_info, is_estimated, notes, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (*domain.Measurement, error) {
	var (
		m          domain.Measurement
		measuredAt time.Time
		typ        string
		percentile sql.NullFloat64
		zScore     sql.NullFloat64
		deviceInfo []byte
	)
	err := row.Scan(&m.ID, &m.SubjectID, &m.OwnerID, &measuredAt, &typ, &m.Value, &m.Unit,
		&percentile, &zScore, &m.Source, &deviceInfo, &m.IsEstimated, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.MeasuredAt = measuredAt.Format(domain.DayLayout)
	m.Type = domain.MeasurementType(typ)
	if percentile.Valid {
		v := percentile.Float64
		m.Percentile = &v
	}
	if zScore.Valid {
		v := zScore.Float64
		m.ZScore = &v
	}
	if len(deviceInfo) > 0 {
		if err := json.Unmarshal(deviceInfo, &m.DeviceInfo); err != nil {
			return nil, fmt.Errorf("decode device_info: %w", err)
		}
	}
	return &m, nil
}

// deviceInfoParam encodes info for a JSONB parameter; nil maps become NULL.
func deviceInfoParam(info map[string]string) (any, error) {
	if info == nil {
		return nil, nil
	}
	b, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Get returns the measurement with the given id, or nil when none exists.
func (d *DB) Get(ctx context.Context, id string) (*domain.Measurement, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+measurementColumns+" FROM measurements WHERE id = $1;", id)
	m, err := scanMeasurement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return m, nil
}

// Put upserts m by id.
func (d *DB) Put(ctx context.Context, m *domain.Measurement) (*domain.Measurement, error) {
	stored := *m
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	info, err := deviceInfoParam(stored.DeviceInfo)
	if err != nil {
		return nil, &domain.StorageError{Op: "put", Err: err}
	}

	_, err = d.sql.ExecContext(ctx, `
INSERT INTO measurements(`+measurementColumns+`)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE SET
	value = EXCLUDED.value,
	unit = EXCLUDED.unit,
	percentile = EXCLUDED.percentile,
	z_score = EXCLUDED.z_score,
	source = EXCLUDED.source,
	device_info = EXCLUDED.device_info,
	is_estimated = EXCLUDED.is_estimated,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at;`,
		stored.ID, stored.SubjectID, stored.OwnerID, stored.MeasuredAt, string(stored.Type), stored.Value, stored.Unit,
		stored.Percentile, stored.ZScore, stored.Source, info, stored.IsEstimated, stored.Notes,
		stored.CreatedAt.UTC(), stored.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, &domain.StorageError{Op: "put", Err: err}
	}
	return &stored, nil
}

// Update applies the set fields of patch in a single statement. Unset fields
// are passed as NULL and keep their stored value through COALESCE.
func (d *DB) Update(ctx context.Context, id string, patch domain.MeasurementPatch, updatedAt time.Time) (*domain.Measurement, error) {
	info, err := deviceInfoParam(patch.DeviceInfo)
	if err != nil {
		return nil, &domain.StorageError{Op: "update", Err: err}
	}

	row := d.sql.QueryRowContext(ctx, `
UPDATE measurements SET
	value = COALESCE($2, value),
	unit = COALESCE($3, unit),
	percentile = COALESCE($4, percentile),
	z_score = COALESCE($5, z_score),
	notes = COALESCE($6, notes),
	is_estimated = COALESCE($7, is_estimated),
	device_info = COALESCE($8::jsonb, device_info),
	source = COALESCE($9, source),
	updated_at = $10
WHERE id = $1
RETURNING `+measurementColumns+`;`,
		id, patch.Value, patch.Unit, patch.Percentile, patch.ZScore, patch.Notes,
		patch.IsEstimated, info, patch.Source, updatedAt.UTC(),
	)
	m, err := scanMeasurement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StorageError{Op: "update", Err: err}
	}
	return m, nil
}

// Delete removes the measurement with the given id.
func (d *DB) Delete(ctx context.Context, id string) error {
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM measurements WHERE id = $1;", id); err != nil {
		return &domain.StorageError{Op: "delete", Err: err}
	}
	return nil
}

// QueryBySubject lists a subject's measurements ordered by measured_at, with
// insertion time breaking ties.
func (d *DB) QueryBySubject(ctx context.Context, subjectID string, q domain.SubjectQuery) ([]domain.Measurement, error) {
	query, args := buildSubjectQuery(subjectID, q)
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	out := make([]domain.Measurement, 0)
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "query", Err: err}
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "query", Err: err}
	}
	return out, nil
}

func buildSubjectQuery(subjectID string, q domain.SubjectQuery) (string, []any) {
	var b strings.Builder
	args := []any{subjectID}
	b.WriteString("SELECT " + measurementColumns + " FROM measurements WHERE subject_id = $1")

	if q.Type != "" {
		args = append(args, string(q.Type))
		fmt.Fprintf(&b, " AND type = $%d", len(args))
	}
	if q.From != "" {
		args = append(args, q.From)
		fmt.Fprintf(&b, " AND measured_at >= $%d", len(args))
	}
	if q.To != "" {
		args = append(args, q.To)
		fmt.Fprintf(&b, " AND measured_at <= $%d", len(args))
	}

	if q.NewestFirst {
		b.WriteString(" ORDER BY measured_at DESC, created_at DESC, id DESC")
	} else {
		b.WriteString(" ORDER BY measured_at ASC, created_at ASC, id ASC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	b.WriteString(";")
	return b.String(), args
}
