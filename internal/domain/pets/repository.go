package pets

import "context"

// ListFilter filtra los listados. Status vacío = todo menos archived.
type ListFilter struct {
	Status  Status
	OwnerID string
	Search  string // matchea nombre o chip
	Page    int
	Limit   int
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error

	GetByID(ctx context.Context, userID, id string) (Pet, error)
	GetByChip(ctx context.Context, chipNumber string) (Pet, error)
	List(ctx context.Context, userID string, f ListFilter) ([]Pet, int, error)
	CountByOwnerAndStatus(ctx context.Context, userID, ownerID string, status Status) (int, error)
}
