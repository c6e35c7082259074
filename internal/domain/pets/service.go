package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("pet not found")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrDuplicateChip = errors.New("chip number already registered")
)

// OwnerDirectory lo implementa el servicio de owners; pre-chequeo de
// padre existente sin acoplar paquetes.
type OwnerDirectory interface {
	Exists(ctx context.Context, userID, ownerID string) (bool, error)
}

type Service struct {
	repo   Repository
	owners OwnerDirectory
	now    func() time.Time
}

func NewService(repo Repository, owners OwnerDirectory) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		now:    time.Now,
	}
}

type CreateInput struct {
	OwnerID     string
	Name        string
	Species     string
	Breed       string
	Sex         string
	BirthDate   *time.Time
	WeightKg    float64
	Allergies   string
	Medications string
	ChipNumber  string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Pet, error) {
	userID = strings.TrimSpace(userID)
	ownerID := strings.TrimSpace(in.OwnerID)
	name := strings.TrimSpace(in.Name)
	species := Species(strings.TrimSpace(in.Species))
	sex := Sex(strings.TrimSpace(in.Sex))
	chip := strings.TrimSpace(in.ChipNumber)

	if userID == "" || ownerID == "" || name == "" {
		return Pet{}, ErrInvalidInput
	}
	if !ValidSpecies(species) {
		return Pet{}, ErrInvalidInput
	}
	if !ValidSex(sex) {
		return Pet{}, ErrInvalidInput
	}
	if in.WeightKg < 0 {
		return Pet{}, ErrInvalidInput
	}

	if s.owners != nil {
		ok, err := s.owners.Exists(ctx, userID, ownerID)
		if err != nil {
			return Pet{}, fmt.Errorf("check owner: %w", err)
		}
		if !ok {
			return Pet{}, ErrOwnerNotFound
		}
	}

	// El chip es único global (identifica al animal, no al tenant).
	if chip != "" {
		if _, err := s.repo.GetByChip(ctx, chip); err == nil {
			return Pet{}, ErrDuplicateChip
		}
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		UserID:      userID,
		OwnerID:     ownerID,
		Name:        name,
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         sex,
		BirthDate:   in.BirthDate,
		WeightKg:    in.WeightKg,
		Allergies:   strings.TrimSpace(in.Allergies),
		Medications: strings.TrimSpace(in.Medications),
		ChipNumber:  chip,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("create pet: %w", err)
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Pet, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	return s.repo.List(ctx, userID, f)
}

type UpdateInput struct {
	// Punteros: nil = no tocar.
	Name        *string
	Breed       *string
	Sex         *string
	BirthDate   *time.Time
	ClearBirth  bool
	WeightKg    *float64
	Allergies   *string
	Medications *string
	ChipNumber  *string
	Status      *Status
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Pet{}, ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sex := Sex(strings.TrimSpace(*in.Sex))
		if !ValidSex(sex) {
			return Pet{}, ErrInvalidInput
		}
		p.Sex = sex
	}
	if in.ClearBirth {
		p.BirthDate = nil
	} else if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.WeightKg != nil {
		if *in.WeightKg < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.WeightKg = *in.WeightKg
	}
	if in.Allergies != nil {
		p.Allergies = strings.TrimSpace(*in.Allergies)
	}
	if in.Medications != nil {
		p.Medications = strings.TrimSpace(*in.Medications)
	}
	if in.ChipNumber != nil {
		chip := strings.TrimSpace(*in.ChipNumber)
		if chip != "" && chip != p.ChipNumber {
			if _, err := s.repo.GetByChip(ctx, chip); err == nil {
				return Pet{}, ErrDuplicateChip
			}
		}
		p.ChipNumber = chip
	}
	if in.Status != nil {
		// archived solo vía Archive (DELETE).
		if !ValidStatus(*in.Status) || *in.Status == StatusArchived {
			return Pet{}, ErrInvalidInput
		}
		p.Status = *in.Status
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("update pet: %w", err)
	}
	return p, nil
}

// Archive es el soft-delete de la mascota.
func (s *Service) Archive(ctx context.Context, userID, id string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Pet{}, ErrNotFound
	}

	// Idempotente
	if p.Status == StatusArchived {
		return p, nil
	}

	p.Status = StatusArchived
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("archive pet: %w", err)
	}
	return p, nil
}

type VaccinationInput struct {
	Name           string
	AdministeredAt *time.Time
	NextDueAt      *time.Time
	Notes          string
}

// AddVaccination agrega un registro de vacuna a la mascota.
// Si no viene fecha de aplicación, se usa hoy.
func (s *Service) AddVaccination(ctx context.Context, userID, petID string, in VaccinationInput) (Pet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(petID))
	if err != nil {
		return Pet{}, ErrNotFound
	}

	now := s.now()
	administered := now
	if in.AdministeredAt != nil {
		administered = *in.AdministeredAt
	}

	p.Vaccinations = append(p.Vaccinations, Vaccination{
		ID:             uuid.NewString(),
		Name:           name,
		AdministeredAt: administered,
		NextDueAt:      in.NextDueAt,
		Notes:          strings.TrimSpace(in.Notes),
	})
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, fmt.Errorf("add vaccination: %w", err)
	}
	return p, nil
}

// CountActiveByOwner lo usa el servicio de owners para bloquear el
// archivado de un dueño con mascotas activas.
func (s *Service) CountActiveByOwner(ctx context.Context, userID, ownerID string) (int, error) {
	return s.repo.CountByOwnerAndStatus(ctx, userID, strings.TrimSpace(ownerID), StatusActive)
}

// Exists lo usa el servicio de citas para el pre-chequeo de mascota.
func (s *Service) Exists(ctx context.Context, userID, petID string) (bool, error) {
	p, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(petID))
	if err != nil {
		return false, nil
	}
	return p.Status == StatusActive, nil
}
