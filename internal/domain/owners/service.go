package owners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("owner not found")
	ErrDuplicateEmail = errors.New("owner email already in use")
	ErrDuplicateDNI   = errors.New("dni already in use")
	ErrHasActivePets  = errors.New("owner has active pets")
)

// PetCounter lo implementa el servicio de pets; se inyecta como interfaz
// para no acoplar paquetes de dominio entre sí.
type PetCounter interface {
	CountActiveByOwner(ctx context.Context, userID, ownerID string) (int, error)
}

type Service struct {
	repo Repository
	pets PetCounter
	now  func() time.Time
}

func NewService(repo Repository, pets PetCounter) *Service {
	return &Service{
		repo: repo,
		pets: pets,
		now:  time.Now,
	}
}

// SetPetCounter cierra el ciclo owners<->pets en el wiring: pets necesita
// owners para validar el padre, y owners necesita pets para bloquear el
// archivado. Se construye owners con nil y se completa acá.
func (s *Service) SetPetCounter(pets PetCounter) {
	s.pets = pets
}

type CreateInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	DNI     string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Owner, error) {
	userID = strings.TrimSpace(userID)
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	dni := strings.TrimSpace(in.DNI)

	if userID == "" || name == "" || email == "" {
		return Owner{}, ErrInvalidInput
	}

	// Pre-chequeos de unicidad scoped al usuario.
	if _, err := s.repo.GetByEmail(ctx, userID, email); err == nil {
		return Owner{}, ErrDuplicateEmail
	}
	if dni != "" {
		if _, err := s.repo.GetByDNI(ctx, userID, dni); err == nil {
			return Owner{}, ErrDuplicateDNI
		}
	}

	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		DNI:       dni,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, fmt.Errorf("create owner: %w", err)
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id string) (Owner, error) {
	o, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Owner{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Owner, int, error) {
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
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	DNI     *string
	Status  *Status
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Owner, error) {
	o, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Owner{}, ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Owner{}, ErrInvalidInput
		}
		o.Name = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return Owner{}, ErrInvalidInput
		}
		// Unicidad solo si el campo cambia.
		if email != o.Email {
			if _, err := s.repo.GetByEmail(ctx, userID, email); err == nil {
				return Owner{}, ErrDuplicateEmail
			}
			o.Email = email
		}
	}
	if in.Phone != nil {
		o.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		o.Address = strings.TrimSpace(*in.Address)
	}
	if in.DNI != nil {
		dni := strings.TrimSpace(*in.DNI)
		if dni != "" && dni != o.DNI {
			if _, err := s.repo.GetByDNI(ctx, userID, dni); err == nil {
				return Owner{}, ErrDuplicateDNI
			}
		}
		o.DNI = dni
	}
	if in.Status != nil {
		// archived solo vía Archive (DELETE), no por update.
		if !ValidStatus(*in.Status) || *in.Status == StatusArchived {
			return Owner{}, ErrInvalidInput
		}
		o.Status = *in.Status
	}

	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o); err != nil {
		return Owner{}, fmt.Errorf("update owner: %w", err)
	}
	return o, nil
}

// Archive es el soft-delete. Bloqueado mientras el dueño tenga
// mascotas activas.
func (s *Service) Archive(ctx context.Context, userID, id string) (Owner, error) {
	o, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Owner{}, ErrNotFound
	}

	// Idempotente
	if o.Status == StatusArchived {
		return o, nil
	}

	if s.pets != nil {
		n, err := s.pets.CountActiveByOwner(ctx, userID, o.ID)
		if err != nil {
			return Owner{}, fmt.Errorf("count pets: %w", err)
		}
		if n > 0 {
			return Owner{}, ErrHasActivePets
		}
	}

	o.Status = StatusArchived
	o.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, o); err != nil {
		return Owner{}, fmt.Errorf("archive owner: %w", err)
	}
	return o, nil
}

// Exists lo usa el servicio de pets para el pre-chequeo de padre existente.
// Un owner archivado no acepta mascotas nuevas.
func (s *Service) Exists(ctx context.Context, userID, ownerID string) (bool, error) {
	o, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(ownerID))
	if err != nil {
		return false, nil
	}
	return o.Status != StatusArchived, nil
}
