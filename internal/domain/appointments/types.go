package appointments

// Status define el ciclo de vida de la cita.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// Blocking indica si la cita cuenta para el chequeo de solapamiento.
// Las terminales (completed/cancelled/no_show) liberan su franja.
func (s Status) Blocking() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// Type define el tipo de cita.
// @Enum consultation, vaccination, surgery, grooming, checkup, emergency, other
type Type string

const (
	TypeConsultation Type = "consultation"
	TypeVaccination  Type = "vaccination"
	TypeSurgery      Type = "surgery"
	TypeGrooming     Type = "grooming"
	TypeCheckup      Type = "checkup"
	TypeEmergency    Type = "emergency"
	TypeOther        Type = "other"
)

func ValidType(t Type) bool {
	switch t {
	case TypeConsultation, TypeVaccination, TypeSurgery,
		TypeGrooming, TypeCheckup, TypeEmergency, TypeOther:
		return true
	default:
		return false
	}
}
