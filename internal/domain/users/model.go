package users

import "time"

// Role define los roles del sistema.
// Se guarda en el propio registro del usuario; el default al registrarse
// es client y solo un admin puede cambiarlo.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleClient Role = "client"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleClient:
		return true
	default:
		return false
	}
}

// User es la cuenta de un usuario de la clínica (el "tenant" de todos
// los registros de owners/pets/citas).
type User struct {
	ID       string
	Username string
	Email    string
	LastName string
	Phone    string

	PasswordHash string
	Role         Role

	// Invariante: ambos null o ambos seteados, nunca uno solo.
	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
