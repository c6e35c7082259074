package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, user_id, pet_id, owner_id, vet_id,
	date, start_time, end_time, duration_minutes,
	type, status, reason, notes,
	check_in_time, check_out_time,
	created_at, updated_at
`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (
			id, user_id, pet_id, owner_id, vet_id,
			date, start_time, end_time, duration_minutes,
			type, status, reason, notes,
			check_in_time, check_out_time,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		a.ID,
		a.UserID,
		a.PetID,
		a.OwnerID,
		a.VetID,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.DurationMinutes,
		string(a.Type),
		string(a.Status),
		a.Reason,
		a.Notes,
		a.CheckInTime,
		a.CheckOutTime,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			pet_id = $3,
			owner_id = $4,
			vet_id = $5,
			date = $6,
			start_time = $7,
			end_time = $8,
			duration_minutes = $9,
			type = $10,
			status = $11,
			reason = $12,
			notes = $13,
			check_in_time = $14,
			check_out_time = $15,
			updated_at = $16
		WHERE id = $1 AND user_id = $2
	`,
		a.ID,
		a.UserID,
		a.PetID,
		a.OwnerID,
		a.VetID,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.DurationMinutes,
		string(a.Type),
		string(a.Status),
		a.Reason,
		a.Notes,
		a.CheckInTime,
		a.CheckOutTime,
		a.UpdatedAt,
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

func (r *AppointmentsRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM appointments WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, userID, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	return scanAppointment(row)
}

func (r *AppointmentsRepo) List(ctx context.Context, userID string, f appointments.ListFilter) ([]appointments.Appointment, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.PetID != "" {
		args = append(args, f.PetID)
		where = append(where, "pet_id = $"+strconv.Itoa(len(args)))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if f.VetID != "" {
		args = append(args, f.VetID)
		where = append(where, "vet_id = $"+strconv.Itoa(len(args)))
	}
	if f.Date != nil {
		args = append(args, *f.Date)
		where = append(where, "date = $"+strconv.Itoa(len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, "date >= $"+strconv.Itoa(len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, "date <= $"+strconv.Itoa(len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+cond+`
		ORDER BY date ASC, start_time ASC
		LIMIT $`+limitArg+` OFFSET $`+offsetArg,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *AppointmentsRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1 AND date = $2
		ORDER BY start_time ASC
	`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

func (r *AppointmentsRepo) CountByStatus(ctx context.Context, userID string) (map[appointments.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		WHERE user_id = $1
		GROUP BY status
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[appointments.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[appointments.Status(status)] = n
	}

	return out, rows.Err()
}

func (r *AppointmentsRepo) CountOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments WHERE user_id = $1 AND date = $2
	`, userID, date).Scan(&n)
	return n, err
}

func (r *AppointmentsRepo) CountUpcoming(ctx context.Context, userID string, after time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE user_id = $1 AND date > $2 AND status IN ('scheduled', 'confirmed')
	`, userID, after).Scan(&n)
	return n, err
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var typ, status string
	var checkIn, checkOut sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.PetID,
		&a.OwnerID,
		&a.VetID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.DurationMinutes,
		&typ,
		&status,
		&a.Reason,
		&a.Notes,
		&checkIn,
		&checkOut,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return appointments.Appointment{}, ErrNotFound
		}
		return appointments.Appointment{}, err
	}

	a.Type = appointments.Type(typ)
	a.Status = appointments.Status(status)
	if checkIn.Valid {
		t := checkIn.Time
		a.CheckInTime = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		a.CheckOutTime = &t
	}

	// la fecha vuelve en UTC medianoche para que las comparaciones de día
	// sean estables independiente del timezone de la sesión.
	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)

	return a, nil
}
