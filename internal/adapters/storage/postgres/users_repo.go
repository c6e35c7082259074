package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic-api/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, username, email, last_name, phone,
	password_hash, role,
	reset_password_token, reset_password_expires,
	created_at, updated_at
`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, email, last_name, phone,
			password_hash, role,
			reset_password_token, reset_password_expires,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		u.ID,
		u.Username,
		u.Email,
		u.LastName,
		u.Phone,
		u.PasswordHash,
		string(u.Role),
		toNullString(u.ResetPasswordToken),
		toNullDate(u.ResetPasswordExpires),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			username = $2,
			email = $3,
			last_name = $4,
			phone = $5,
			password_hash = $6,
			role = $7,
			reset_password_token = $8,
			reset_password_expires = $9,
			updated_at = $10
		WHERE id = $1
	`,
		u.ID,
		u.Username,
		u.Email,
		u.LastName,
		u.Phone,
		u.PasswordHash,
		string(u.Role),
		toNullString(u.ResetPasswordToken),
		toNullDate(u.ResetPasswordExpires),
		u.UpdatedAt,
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

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return users.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)

	return scanUser(row)
}

func (r *UsersRepo) List(ctx context.Context, page, limit int) ([]users.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}

	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	var role string
	var resetToken sql.NullString
	var resetExpires sql.NullTime

	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.LastName,
		&u.Phone,
		&u.PasswordHash,
		&role,
		&resetToken,
		&resetExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}

	u.Role = users.Role(role)
	if resetToken.Valid {
		t := resetToken.String
		u.ResetPasswordToken = &t
	}
	if resetExpires.Valid {
		t := resetExpires.Time
		u.ResetPasswordExpires = &t
	}

	return u, nil
}
