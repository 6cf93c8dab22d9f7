package catalog

import (
	"context"
	"errors"

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

const cols = `id, name, dose_number, interval_days, position, created_at, updated_at`

func scanDose(row pgx.Row) (*VaccineDose, error) {
	var v VaccineDose
	err := row.Scan(&v.ID, &v.Name, &v.DoseNumber, &v.IntervalDays, &v.Position,
		&v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, v *VaccineDose) error {
	v.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO vaccine_master (id, name, dose_number, interval_days, position)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		v.ID, v.Name, v.DoseNumber, v.IntervalDays, v.Position,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateDose
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VaccineDose, error) {
	return scanDose(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM vaccine_master WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, v *VaccineDose) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE vaccine_master SET name=$2, dose_number=$3, interval_days=$4,
			position=$5, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.Name, v.DoseNumber, v.IntervalDays, v.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDose
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM vaccine_master WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListOrdered(ctx context.Context) ([]*VaccineDose, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM vaccine_master ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*VaccineDose
	for rows.Next() {
		v, err := scanDose(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
