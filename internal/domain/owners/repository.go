package owners

import "context"

// ListFilter filtra los listados. Status vacío = todo menos archived.
type ListFilter struct {
	Status Status
	Search string // matchea nombre o email
	Page   int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, o Owner) error
	Update(ctx context.Context, o Owner) error

	// Todas las lecturas vienen ya scoped por userID: un registro de otro
	// usuario es indistinguible de uno inexistente.
	GetByID(ctx context.Context, userID, id string) (Owner, error)
	GetByEmail(ctx context.Context, userID, email string) (Owner, error)
	GetByDNI(ctx context.Context, userID, dni string) (Owner, error)
	List(ctx context.Context, userID string, f ListFilter) ([]Owner, int, error)
}
