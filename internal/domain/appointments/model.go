package appointments

import (
	"fmt"
	"time"
)

// Appointment es una franja [StartTime, EndTime) dentro de un día.
// Las horas van como "HH:mm"; Date es el día normalizado a medianoche UTC.
type Appointment struct {
	ID     string
	UserID string

	PetID   string
	OwnerID string
	VetID   string // usuario doctor, opcional

	Date      time.Time
	StartTime string // HH:mm
	EndTime   string // HH:mm

	// Derivado de end - start; se recalcula en cada cambio de horario.
	DurationMinutes int

	Type   Type
	Status Status

	Reason string
	Notes  string

	// Sellos one-way: una vez seteados, no se pisan.
	CheckInTime  *time.Time
	CheckOutTime *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// parseHHMM valida el patrón HH:mm de forma explícita (sin depender del
// casteo laxo de ningún framework) y devuelve minutos desde medianoche.
func parseHHMM(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("time %q must be HH:mm", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("time %q must be HH:mm", s)
		}
	}

	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	minutes := int(s[3]-'0')*10 + int(s[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}

	return hours*60 + minutes, nil
}

// overlaps aplica semántica de intervalos semiabiertos [start, end):
// tocar el borde (end == otherStart) NO es conflicto.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// normalizeDate trunca a medianoche UTC para comparar días.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
