package owners

import "time"

// Status define el ciclo de vida del dueño.
// archived es el soft-delete: no aparece en listados por defecto
// pero sigue siendo consultable por id para auditoría.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	default:
		return false
	}
}

// Owner es el responsable de una o más mascotas.
// UserID es el usuario de la clínica dueño del registro; toda consulta
// filtra por él.
type Owner struct {
	ID     string
	UserID string

	Name    string
	Email   string
	Phone   string
	Address string
	DNI     string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
