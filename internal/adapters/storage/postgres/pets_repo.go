package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"vet-clinic-api/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, user_id, owner_id,
	name, species, breed, sex,
	birth_date, weight_kg, allergies, medications, chip_number,
	status, created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pets (
			id, user_id, owner_id,
			name, species, breed, sex,
			birth_date, weight_kg, allergies, medications, chip_number,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		p.ID,
		p.UserID,
		p.OwnerID,
		p.Name,
		string(p.Species),
		p.Breed,
		string(p.Sex),
		toNullDate(p.BirthDate),
		p.WeightKg,
		p.Allergies,
		p.Medications,
		p.ChipNumber,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertVaccinations(ctx, tx, p.ID, p.Vaccinations); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $3,
			species = $4,
			breed = $5,
			sex = $6,
			birth_date = $7,
			weight_kg = $8,
			allergies = $9,
			medications = $10,
			chip_number = $11,
			status = $12,
			updated_at = $13
		WHERE id = $1 AND user_id = $2
	`,
		p.ID,
		p.UserID,
		p.Name,
		string(p.Species),
		p.Breed,
		string(p.Sex),
		toNullDate(p.BirthDate),
		p.WeightKg,
		p.Allergies,
		p.Medications,
		p.ChipNumber,
		string(p.Status),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	// Reescritura completa del historial de vacunas: simple y suficiente
	// para el volumen esperado por mascota.
	if _, err := tx.ExecContext(ctx, `DELETE FROM pet_vaccinations WHERE pet_id = $1`, p.ID); err != nil {
		return err
	}
	if err := insertVaccinations(ctx, tx, p.ID, p.Vaccinations); err != nil {
		return err
	}

	return tx.Commit()
}

func insertVaccinations(ctx context.Context, tx *sql.Tx, petID string, vaccs []pets.Vaccination) error {
	for _, v := range vaccs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pet_vaccinations (id, pet_id, name, administered_at, next_due_at, notes)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			v.ID,
			petID,
			v.Name,
			v.AdministeredAt,
			toNullDate(v.NextDueAt),
			v.Notes,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, userID, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, err
	}

	if err := r.loadVaccinations(ctx, &p); err != nil {
		return pets.Pet{}, err
	}

	return p, nil
}

func (r *PetsRepo) GetByChip(ctx context.Context, chipNumber string) (pets.Pet, error) {
	if strings.TrimSpace(chipNumber) == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE chip_number = $1
	`, chipNumber)

	return scanPet(row)
}

func (r *PetsRepo) List(ctx context.Context, userID string, f pets.ListFilter) ([]pets.Pet, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	} else {
		where = append(where, "status <> 'archived'")
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(LOWER(name) LIKE $"+n+" OR LOWER(chip_number) LIKE $"+n+")")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pets WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE `+cond+`
		ORDER BY created_at ASC
		LIMIT $`+limitArg+` OFFSET $`+offsetArg,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		if err := r.loadVaccinations(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}

	return out, total, nil
}

func (r *PetsRepo) CountByOwnerAndStatus(ctx context.Context, userID, ownerID string, status pets.Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM pets
		WHERE user_id = $1 AND owner_id = $2 AND status = $3
	`, userID, ownerID, string(status)).Scan(&n)
	return n, err
}

func (r *PetsRepo) loadVaccinations(ctx context.Context, p *pets.Pet) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, administered_at, next_due_at, notes
		FROM pet_vaccinations
		WHERE pet_id = $1
		ORDER BY administered_at ASC
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Vaccinations = make([]pets.Vaccination, 0)
	for rows.Next() {
		var v pets.Vaccination
		var nextDue sql.NullTime
		if err := rows.Scan(&v.ID, &v.Name, &v.AdministeredAt, &nextDue, &v.Notes); err != nil {
			return err
		}
		if nextDue.Valid {
			t := nextDue.Time
			v.NextDueAt = &t
		}
		p.Vaccinations = append(p.Vaccinations, v)
	}

	return rows.Err()
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var species, sex, status string
	var bd sql.NullTime

	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.OwnerID,
		&p.Name,
		&species,
		&p.Breed,
		&sex,
		&bd,
		&p.WeightKg,
		&p.Allergies,
		&p.Medications,
		&p.ChipNumber,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	p.Sex = pets.Sex(sex)
	p.Status = pets.Status(status)
	if bd.Valid {
		t := bd.Time
		p.BirthDate = &t
	}

	return p, nil
}
