package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type appointmentsRepo struct {
	mu   sync.RWMutex
	byID map[string]appointments.Appointment
}

func NewAppointmentsRepo() appointments.Repository {
	return &appointmentsRepo{
		byID: make(map[string]appointments.Appointment),
	}
}

func (r *appointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("appointment already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *appointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *appointmentsRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *appointmentsRepo) GetByID(ctx context.Context, userID, id string) (appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return appointments.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *appointmentsRepo) List(ctx context.Context, userID string, f appointments.ListFilter) ([]appointments.Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		if f.OwnerID != "" && a.OwnerID != f.OwnerID {
			continue
		}
		if f.VetID != "" && a.VetID != f.VetID {
			continue
		}
		if f.Date != nil && !sameDay(a.Date, *f.Date) {
			continue
		}
		if f.From != nil && a.Date.Before(dayStart(*f.From)) {
			continue
		}
		if f.To != nil && a.Date.After(dayStart(*f.To)) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})

	return paginate(out, f.Page, f.Limit), len(out), nil
}

func (r *appointmentsRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]appointments.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if a.UserID == userID && sameDay(a.Date, date) {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})

	return out, nil
}

func (r *appointmentsRepo) CountByStatus(ctx context.Context, userID string) (map[appointments.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[appointments.Status]int)
	for _, a := range r.byID {
		if a.UserID == userID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (r *appointmentsRepo) CountOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if a.UserID == userID && sameDay(a.Date, date) {
			n++
		}
	}
	return n, nil
}

func (r *appointmentsRepo) CountUpcoming(ctx context.Context, userID string, after time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := dayStart(after)
	n := 0
	for _, a := range r.byID {
		if a.UserID != userID || !a.Date.After(day) {
			continue
		}
		if a.Status == appointments.StatusScheduled || a.Status == appointments.StatusConfirmed {
			n++
		}
	}
	return n, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
