package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/pets"
)

type petsRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetsRepo() pets.Repository {
	return &petsRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petsRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petsRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *petsRepo) GetByID(ctx context.Context, userID, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok || p.UserID != userID {
		return pets.Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *petsRepo) GetByChip(ctx context.Context, chipNumber string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// El chip identifica al animal: búsqueda global, sin scope de tenant.
	for _, p := range r.byID {
		if p.ChipNumber != "" && p.ChipNumber == chipNumber {
			return p, nil
		}
	}
	return pets.Pet{}, ErrNotFound
}

func (r *petsRepo) List(ctx context.Context, userID string, f pets.ListFilter) ([]pets.Pet, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if p.UserID != userID {
			continue
		}
		if f.Status != "" {
			if p.Status != f.Status {
				continue
			}
		} else if p.Status == pets.StatusArchived {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.ChipNumber), q) {
				continue
			}
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return paginate(out, f.Page, f.Limit), len(out), nil
}

func (r *petsRepo) CountByOwnerAndStatus(ctx context.Context, userID, ownerID string, status pets.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.byID {
		if p.UserID == userID && p.OwnerID == ownerID && p.Status == status {
			n++
		}
	}
	return n, nil
}
