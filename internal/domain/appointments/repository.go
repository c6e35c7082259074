package appointments

import (
	"context"
	"time"
)

// ListFilter filtra los listados de citas.
type ListFilter struct {
	Status  Status
	PetID   string
	OwnerID string
	VetID   string
	Date    *time.Time // día exacto
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
}

type Repository interface {
	Create(ctx context.Context, a Appointment) error
	Update(ctx context.Context, a Appointment) error
	Delete(ctx context.Context, userID, id string) error

	GetByID(ctx context.Context, userID, id string) (Appointment, error)
	List(ctx context.Context, userID string, f ListFilter) ([]Appointment, int, error)

	// ListByDate alimenta el scan de solapamiento: todas las citas del
	// usuario en ese día, sin paginar.
	ListByDate(ctx context.Context, userID string, date time.Time) ([]Appointment, error)

	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
	CountOnDate(ctx context.Context, userID string, date time.Time) (int, error)
	CountUpcoming(ctx context.Context, userID string, after time.Time) (int, error)
}
