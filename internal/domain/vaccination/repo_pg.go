package vaccination

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/immunitrack/immunitrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `v.id, v.child_id, v.vaccine_id, m.name, v.scheduled_date, v.actual_date,
	v.status, v.batch_number, v.health_worker_id, v.geo_lat, v.geo_long,
	v.created_at, v.last_updated`

const fromJoin = ` FROM vaccination v JOIN vaccine_master m ON m.id = v.vaccine_id`

func scanVaccination(row pgx.Row) (*Vaccination, error) {
	var v Vaccination
	err := row.Scan(&v.ID, &v.ChildID, &v.VaccineID, &v.VaccineName,
		&v.ScheduledDate, &v.ActualDate, &v.Status, &v.BatchNumber,
		&v.HealthWorkerID, &v.GeoLat, &v.GeoLong, &v.CreatedAt, &v.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) CreateBatch(ctx context.Context, records []*Vaccination) error {
	for _, v := range records {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO vaccination (id, child_id, vaccine_id, scheduled_date, status)
			VALUES ($1,$2,$3,$4,$5)`,
			v.ID, v.ChildID, v.VaccineID, v.ScheduledDate, v.Status)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSchedule
			}
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Vaccination, error) {
	return scanVaccination(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+fromJoin+` WHERE v.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, v *Vaccination) error {
	// scheduled_date is deliberately absent from the SET list.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE vaccination SET status=$2, actual_date=$3, batch_number=$4,
			health_worker_id=$5, geo_lat=$6, geo_long=$7, last_updated=NOW()
		WHERE id = $1`,
		v.ID, v.Status, v.ActualDate, v.BatchNumber,
		v.HealthWorkerID, v.GeoLat, v.GeoLong)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByChild(ctx context.Context, childID uuid.UUID) ([]*Vaccination, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+fromJoin+` WHERE v.child_id = $1 ORDER BY m.position ASC`, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListDue(ctx context.Context, before time.Time, limit, offset int) ([]*Vaccination, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM vaccination
		WHERE status = 'scheduled' AND scheduled_date <= $1`, before).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+fromJoin+`
		WHERE v.status = 'scheduled' AND v.scheduled_date <= $1
		ORDER BY v.scheduled_date ASC LIMIT $2 OFFSET $3`, before, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status) ([]*Vaccination, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+fromJoin+` WHERE v.status = $1 ORDER BY v.scheduled_date ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Vaccination, error) {
	var items []*Vaccination
	for rows.Next() {
		v, err := scanVaccination(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
