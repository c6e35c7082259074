package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic-api/internal/domain/owners"
)

type ownersRepo struct {
	mu   sync.RWMutex
	byID map[string]owners.Owner
}

func NewOwnersRepo() owners.Repository {
	return &ownersRepo{
		byID: make(map[string]owners.Owner),
	}
}

func (r *ownersRepo) Create(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return errors.New("owner already exists")
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownersRepo) Update(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; !exists {
		return ErrNotFound
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownersRepo) GetByID(ctx context.Context, userID, id string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok || o.UserID != userID {
		// De otro tenant = inexistente.
		return owners.Owner{}, ErrNotFound
	}
	return o, nil
}

func (r *ownersRepo) GetByEmail(ctx context.Context, userID, email string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.byID {
		if o.UserID == userID && o.Email == email {
			return o, nil
		}
	}
	return owners.Owner{}, ErrNotFound
}

func (r *ownersRepo) GetByDNI(ctx context.Context, userID, dni string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.byID {
		if o.UserID == userID && o.DNI == dni {
			return o, nil
		}
	}
	return owners.Owner{}, ErrNotFound
}

func (r *ownersRepo) List(ctx context.Context, userID string, f owners.ListFilter) ([]owners.Owner, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]owners.Owner, 0)
	for _, o := range r.byID {
		if o.UserID != userID {
			continue
		}
		if f.Status != "" {
			if o.Status != f.Status {
				continue
			}
		} else if o.Status == owners.StatusArchived {
			// Sin filtro explícito, los archivados no aparecen.
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(o.Name), q) &&
				!strings.Contains(strings.ToLower(o.Email), q) {
				continue
			}
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return paginate(out, f.Page, f.Limit), len(out), nil
}
