package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"vet-clinic-api/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

const ownerColumns = `
	id, user_id, name, email, phone, address, dni, status,
	created_at, updated_at
`

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (
			id, user_id, name, email, phone, address, dni, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		o.ID,
		o.UserID,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.DNI,
		string(o.Status),
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func (r *OwnersRepo) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET
			name = $3,
			email = $4,
			phone = $5,
			address = $6,
			dni = $7,
			status = $8,
			updated_at = $9
		WHERE id = $1 AND user_id = $2
	`,
		o.ID,
		o.UserID,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.DNI,
		string(o.Status),
		o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OwnersRepo) GetByID(ctx context.Context, userID, id string) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	return scanOwner(row)
}

func (r *OwnersRepo) GetByEmail(ctx context.Context, userID, email string) (owners.Owner, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		WHERE user_id = $1 AND email = $2
	`, userID, email)

	return scanOwner(row)
}

func (r *OwnersRepo) GetByDNI(ctx context.Context, userID, dni string) (owners.Owner, error) {
	if strings.TrimSpace(dni) == "" {
		return owners.Owner{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		WHERE user_id = $1 AND dni = $2
	`, userID, dni)

	return scanOwner(row)
}

func (r *OwnersRepo) List(ctx context.Context, userID string, f owners.ListFilter) ([]owners.Owner, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	} else {
		// Sin filtro explícito, los archivados no aparecen.
		where = append(where, "status <> 'archived'")
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(LOWER(name) LIKE $"+n+" OR LOWER(email) LIKE $"+n+")")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM owners WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		WHERE `+cond+`
		ORDER BY created_at ASC
		LIMIT $`+limitArg+` OFFSET $`+offsetArg,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}

	return out, total, rows.Err()
}

func scanOwner(row rowScanner) (owners.Owner, error) {
	var o owners.Owner
	var status string

	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Name,
		&o.Email,
		&o.Phone,
		&o.Address,
		&o.DNI,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return owners.Owner{}, ErrNotFound
		}
		return owners.Owner{}, err
	}

	o.Status = owners.Status(status)
	return o, nil
}
