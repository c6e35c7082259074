package pets

// Species define las especies soportadas.
// @Enum dog, cat, bird, rabbit, reptile, other
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesRabbit  Species = "rabbit"
	SpeciesReptile Species = "reptile"
	SpeciesOther   Species = "other"
)

func ValidSpecies(s Species) bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesReptile, SpeciesOther:
		return true
	default:
		return false
	}
}

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func ValidSex(s Sex) bool {
	switch s {
	case SexMale, SexFemale, SexUnknown, "":
		return true
	default:
		return false
	}
}

// Status define el ciclo de vida de la mascota. Nunca se borra en duro.
type Status string

const (
	StatusActive      Status = "active"
	StatusDeceased    Status = "deceased"
	StatusTransferred Status = "transferred"
	StatusArchived    Status = "archived"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusDeceased, StatusTransferred, StatusArchived:
		return true
	default:
		return false
	}
}
