package child

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

const cols = `id, uid, full_name, sex, date_of_birth, place_of_birth,
	caregiver_name, caregiver_contact, caregiver_address, facility_id,
	created_at, last_updated`

func scanChild(row pgx.Row) (*Child, error) {
	var c Child
	err := row.Scan(&c.ID, &c.UID, &c.FullName, &c.Sex, &c.DateOfBirth,
		&c.PlaceOfBirth, &c.CaregiverName, &c.CaregiverContact,
		&c.CaregiverAddress, &c.FacilityID, &c.CreatedAt, &c.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Child) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO child (id, uid, full_name, sex, date_of_birth, place_of_birth,
			caregiver_name, caregiver_contact, caregiver_address, facility_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, last_updated`,
		c.ID, c.UID, c.FullName, c.Sex, c.DateOfBirth, c.PlaceOfBirth,
		c.CaregiverName, c.CaregiverContact, c.CaregiverAddress, c.FacilityID,
	).Scan(&c.CreatedAt, &c.LastUpdated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUID
		}
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Child, error) {
	return scanChild(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM child WHERE id = $1`, id))
}

func (r *repoPG) GetByUID(ctx context.Context, uid string) (*Child, error) {
	return scanChild(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM child WHERE uid = $1`, uid))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Child, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM child`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM child ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Child, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM child WHERE facility_id = $1`, facilityID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM child WHERE facility_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		facilityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) Update(ctx context.Context, c *Child) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE child SET caregiver_name=$2, caregiver_contact=$3,
			caregiver_address=$4, last_updated=NOW()
		WHERE id = $1`,
		c.ID, c.CaregiverName, c.CaregiverContact, c.CaregiverAddress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM child WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]*Child, error) {
	var items []*Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
