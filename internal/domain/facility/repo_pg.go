package facility

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

const cols = `id, name, code, ward, lga, state, reg_counter, created_at, updated_at`

func scanFacility(row pgx.Row) (*Facility, error) {
	var f Facility
	err := row.Scan(&f.ID, &f.Name, &f.Code, &f.Ward, &f.LGA, &f.State,
		&f.RegCounter, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *repoPG) Create(ctx context.Context, f *Facility) error {
	f.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO facility (id, name, code, ward, lga, state)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING reg_counter, created_at, updated_at`,
		f.ID, f.Name, f.Code, f.Ward, f.LGA, f.State,
	).Scan(&f.RegCounter, &f.CreatedAt, &f.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return scanFacility(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM facility WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Facility, error) {
	return scanFacility(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM facility WHERE code = $1`, code))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM facility`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM facility ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddVaccinationDay(ctx context.Context, facilityID uuid.UUID, day time.Weekday) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facility_vaccination_day (id, facility_id, day_of_week)
		VALUES ($1,$2,$3)
		ON CONFLICT (facility_id, day_of_week) DO NOTHING`,
		uuid.New(), facilityID, int(day))
	return err
}

func (r *repoPG) ListVaccinationDays(ctx context.Context, facilityID uuid.UUID) ([]time.Weekday, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT day_of_week FROM facility_vaccination_day
		WHERE facility_id = $1 ORDER BY day_of_week ASC`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []time.Weekday
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, time.Weekday(d))
	}
	return days, rows.Err()
}

func (r *repoPG) NextRegistrationNumber(ctx context.Context, facilityID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE facility SET reg_counter = reg_counter + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING reg_counter`, facilityID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}
