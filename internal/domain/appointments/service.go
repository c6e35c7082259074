package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic-api/internal/platform/lock"
	"vet-clinic-api/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("appointment not found")
	ErrPetNotFound     = errors.New("pet not found")
	ErrOwnerNotFound   = errors.New("owner not found")
	ErrDeleteCompleted = errors.New("completed appointments cannot be deleted")
)

// ConflictError identifica la cita contra la que chocó el alta/edición.
type ConflictError struct {
	ConflictingID string
	Date          string
	StartTime     string
	EndTime       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("appointment overlaps with %s (%s %s-%s)",
		e.ConflictingID, e.Date, e.StartTime, e.EndTime)
}

// PetDirectory y OwnerDirectory los implementan los servicios de pets
// y owners; se inyectan como interfaces para no acoplar paquetes.
type PetDirectory interface {
	Exists(ctx context.Context, userID, petID string) (bool, error)
}

type OwnerDirectory interface {
	Exists(ctx context.Context, userID, ownerID string) (bool, error)
}

type Service struct {
	repo   Repository
	pets   PetDirectory
	owners OwnerDirectory

	// locks serializa check+insert por (userID, fecha): dos requests
	// concurrentes del mismo usuario sobre el mismo día no pueden
	// colarse entre el scan de solapamiento y la escritura.
	locks *lock.Keyed

	now func() time.Time
}

func NewService(repo Repository, pets PetDirectory, owners OwnerDirectory, locks *lock.Keyed) *Service {
	if locks == nil {
		locks = lock.NewKeyed()
	}
	return &Service{
		repo:   repo,
		pets:   pets,
		owners: owners,
		locks:  locks,
		now:    time.Now,
	}
}

func lockKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

// findConflict escanea las citas del día buscando solapamiento con
// [startMin, endMin), ignorando excludeID y las citas en estado terminal.
func (s *Service) findConflict(ctx context.Context, userID string, date time.Time, startMin, endMin int, excludeID string) (*Appointment, error) {
	existing, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}

	for i := range existing {
		e := existing[i]
		if e.ID == excludeID {
			continue
		}
		if !e.Status.Blocking() {
			continue
		}

		eStart, err := parseHHMM(e.StartTime)
		if err != nil {
			continue
		}
		eEnd, err := parseHHMM(e.EndTime)
		if err != nil {
			continue
		}

		if overlaps(startMin, endMin, eStart, eEnd) {
			return &e, nil
		}
	}

	return nil, nil
}

type CreateInput struct {
	PetID   string
	OwnerID string
	VetID   string

	Date      time.Time
	StartTime string
	EndTime   string

	Type   Type
	Reason string
	Notes  string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Appointment, error) {
	userID = strings.TrimSpace(userID)
	petID := strings.TrimSpace(in.PetID)
	ownerID := strings.TrimSpace(in.OwnerID)

	if userID == "" || petID == "" || ownerID == "" {
		return Appointment{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return Appointment{}, ErrInvalidInput
	}
	if !ValidType(in.Type) {
		return Appointment{}, ErrInvalidInput
	}

	startMin, err := parseHHMM(in.StartTime)
	if err != nil {
		return Appointment{}, ErrInvalidInput
	}
	endMin, err := parseHHMM(in.EndTime)
	if err != nil {
		return Appointment{}, ErrInvalidInput
	}
	if endMin <= startMin {
		return Appointment{}, ErrInvalidInput
	}

	if s.pets != nil {
		ok, err := s.pets.Exists(ctx, userID, petID)
		if err != nil {
			return Appointment{}, fmt.Errorf("check pet: %w", err)
		}
		if !ok {
			return Appointment{}, ErrPetNotFound
		}
	}
	if s.owners != nil {
		ok, err := s.owners.Exists(ctx, userID, ownerID)
		if err != nil {
			return Appointment{}, fmt.Errorf("check owner: %w", err)
		}
		if !ok {
			return Appointment{}, ErrOwnerNotFound
		}
	}

	date := normalizeDate(in.Date)

	unlock := s.locks.Lock(lockKey(userID, date))
	defer unlock()

	conflict, err := s.findConflict(ctx, userID, date, startMin, endMin, "")
	if err != nil {
		return Appointment{}, err
	}
	if conflict != nil {
		metrics.RecordAppointmentConflict()
		return Appointment{}, &ConflictError{
			ConflictingID: conflict.ID,
			Date:          date.Format("2006-01-02"),
			StartTime:     conflict.StartTime,
			EndTime:       conflict.EndTime,
		}
	}

	now := s.now()
	a := Appointment{
		ID:              uuid.NewString(),
		UserID:          userID,
		PetID:           petID,
		OwnerID:         ownerID,
		VetID:           strings.TrimSpace(in.VetID),
		Date:            date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: endMin - startMin,
		Type:            in.Type,
		Status:          StatusScheduled,
		Reason:          strings.TrimSpace(in.Reason),
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Appointment, int, error) {
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
	VetID     *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
	Type      *Type
	Reason    *string
	Notes     *string
}

// Update re-corre el chequeo de solapamiento (excluyéndose a sí misma)
// solo cuando cambia fecha u horario.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	timeChanged := false

	if in.VetID != nil {
		a.VetID = strings.TrimSpace(*in.VetID)
	}
	if in.Date != nil {
		d := normalizeDate(*in.Date)
		if !d.Equal(a.Date) {
			a.Date = d
			timeChanged = true
		}
	}
	if in.StartTime != nil && *in.StartTime != a.StartTime {
		a.StartTime = *in.StartTime
		timeChanged = true
	}
	if in.EndTime != nil && *in.EndTime != a.EndTime {
		a.EndTime = *in.EndTime
		timeChanged = true
	}
	if in.Type != nil {
		if !ValidType(*in.Type) {
			return Appointment{}, ErrInvalidInput
		}
		a.Type = *in.Type
	}
	if in.Reason != nil {
		a.Reason = strings.TrimSpace(*in.Reason)
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	startMin, err := parseHHMM(a.StartTime)
	if err != nil {
		return Appointment{}, ErrInvalidInput
	}
	endMin, err := parseHHMM(a.EndTime)
	if err != nil {
		return Appointment{}, ErrInvalidInput
	}
	if endMin <= startMin {
		return Appointment{}, ErrInvalidInput
	}

	// Siempre recalculado, nunca aceptado del caller.
	a.DurationMinutes = endMin - startMin

	if timeChanged {
		unlock := s.locks.Lock(lockKey(userID, a.Date))
		defer unlock()

		conflict, err := s.findConflict(ctx, userID, a.Date, startMin, endMin, a.ID)
		if err != nil {
			return Appointment{}, err
		}
		if conflict != nil {
			metrics.RecordAppointmentConflict()
			return Appointment{}, &ConflictError{
				ConflictingID: conflict.ID,
				Date:          a.Date.Format("2006-01-02"),
				StartTime:     conflict.StartTime,
				EndTime:       conflict.EndTime,
			}
		}
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, fmt.Errorf("update appointment: %w", err)
	}
	return a, nil
}

// UpdateStatus aplica la transición y los sellos one-way:
// - in_progress sella check_in_time si no estaba
// - completed sella check_out_time si no estaba
// Repetir la transición no pisa un sello ya puesto.
func (s *Service) UpdateStatus(ctx context.Context, userID, id string, status Status) (Appointment, error) {
	if !ValidStatus(status) {
		return Appointment{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	now := s.now()
	a.Status = status

	switch status {
	case StatusInProgress:
		if a.CheckInTime == nil {
			t := now
			a.CheckInTime = &t
		}
	case StatusCompleted:
		if a.CheckOutTime == nil {
			t := now
			a.CheckOutTime = &t
		}
	}

	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, fmt.Errorf("update status: %w", err)
	}
	return a, nil
}

// Delete borra la cita. Una cita completada es registro clínico y no
// se puede borrar.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	a, err := s.repo.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return ErrNotFound
	}
	if a.Status == StatusCompleted {
		return ErrDeleteCompleted
	}

	if err := s.repo.Delete(ctx, userID, a.ID); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// Stats es el resumen del dashboard.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	Today    int            `json:"today"`
	Upcoming int            `json:"upcoming"`
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	byStatus, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("count by status: %w", err)
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	today := normalizeDate(s.now())

	todayCount, err := s.repo.CountOnDate(ctx, userID, today)
	if err != nil {
		return Stats{}, fmt.Errorf("count today: %w", err)
	}

	upcoming, err := s.repo.CountUpcoming(ctx, userID, today)
	if err != nil {
		return Stats{}, fmt.Errorf("count upcoming: %w", err)
	}

	return Stats{
		Total:    total,
		ByStatus: byStatus,
		Today:    todayCount,
		Upcoming: upcoming,
	}, nil
}
