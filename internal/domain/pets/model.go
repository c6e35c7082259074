package pets

import "time"

// Vaccination es una vacuna aplicada, registrada bajo la mascota.
type Vaccination struct {
	ID             string
	Name           string
	AdministeredAt time.Time
	NextDueAt      *time.Time
	Notes          string
}

// Pet es el perfil biológico/médico de una mascota.
// UserID es el usuario de la clínica dueño del registro; OwnerID es el
// responsable de la mascota (persona de contacto).
type Pet struct {
	ID      string
	UserID  string
	OwnerID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate   *time.Time
	WeightKg    float64
	Allergies   string
	Medications string
	ChipNumber  string // opcional, único cuando está presente

	Status       Status
	Vaccinations []Vaccination

	CreatedAt time.Time
	UpdatedAt time.Time
}
