package pets

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, userID, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok || p.UserID != userID {
		return Pet{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) GetByChip(ctx context.Context, chipNumber string) (Pet, error) {
	for _, p := range r.byID {
		if p.ChipNumber == chipNumber {
			return p, nil
		}
	}
	return Pet{}, errRepoNotFound
}

func (r *testRepo) List(ctx context.Context, userID string, f ListFilter) ([]Pet, int, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.UserID != userID {
			continue
		}
		if f.Status != "" {
			if p.Status != f.Status {
				continue
			}
		} else if p.Status == StatusArchived {
			continue
		}
		if f.OwnerID != "" && p.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *testRepo) CountByOwnerAndStatus(ctx context.Context, userID, ownerID string, status Status) (int, error) {
	n := 0
	for _, p := range r.byID {
		if p.UserID == userID && p.OwnerID == ownerID && p.Status == status {
			n++
		}
	}
	return n, nil
}

// -------------------------
// Test owner directory
// -------------------------

type testOwners struct {
	exists map[string]bool
}

func (d *testOwners) Exists(ctx context.Context, userID, ownerID string) (bool, error) {
	return d.exists[ownerID], nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, &testOwners{exists: map[string]bool{"owner-1": true}})
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_RequiresExistingOwner(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-ghost",
		Name:    "Rocky",
		Species: "dog",
		Sex:     "male",
	})
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestService_Create_ValidatesEnums(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1",
		Name:    "Rocky",
		Species: "dinosaur",
		Sex:     "male",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad species, got %v", err)
	}

	_, err = svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID:  "owner-1",
		Name:     "Rocky",
		Species:  "dog",
		Sex:      "male",
		WeightKg: -2,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative weight, got %v", err)
	}
}

func TestService_Create_ChipIsGloballyUnique(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, &testOwners{exists: map[string]bool{"owner-1": true, "owner-2": true}})

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Rocky", Species: "dog", Sex: "male", ChipNumber: "CHIP-001",
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// mismo chip desde OTRO usuario: sigue siendo duplicado, el chip
	// identifica al animal
	_, err := svc.Create(context.Background(), "user-2", CreateInput{
		OwnerID: "owner-2", Name: "Otro", Species: "dog", Sex: "male", ChipNumber: "CHIP-001",
	})
	if !errors.Is(err, ErrDuplicateChip) {
		t.Fatalf("expected ErrDuplicateChip across tenants, got %v", err)
	}
}

func TestService_Update_ClearBirthDate(t *testing.T) {
	svc := newTestService(newTestRepo())

	bd := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Rocky", Species: "dog", Sex: "male", BirthDate: &bd,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(context.Background(), "user-1", p.ID, UpdateInput{ClearBirth: true})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.BirthDate != nil {
		t.Fatalf("expected birth date cleared, got %v", updated.BirthDate)
	}
}

func TestService_Update_ArchivedNotSettable(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Rocky", Species: "dog", Sex: "male",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	archived := StatusArchived
	if _, err := svc.Update(context.Background(), "user-1", p.ID, UpdateInput{
		Status: &archived,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("archived via update must be rejected, got %v", err)
	}
}

func TestService_AddVaccination_DefaultsDateToToday(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Rocky", Species: "dog", Sex: "male",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.AddVaccination(context.Background(), "user-1", p.ID, VaccinationInput{
		Name: "rabia",
	})
	if err != nil {
		t.Fatalf("AddVaccination error: %v", err)
	}
	if len(updated.Vaccinations) != 1 {
		t.Fatalf("expected 1 vaccination, got %d", len(updated.Vaccinations))
	}
	if !updated.Vaccinations[0].AdministeredAt.Equal(now) {
		t.Fatalf("expected administered_at defaulted to now, got %v", updated.Vaccinations[0].AdministeredAt)
	}

	if _, err := svc.AddVaccination(context.Background(), "user-1", p.ID, VaccinationInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestService_Exists_OnlyActivePetsSchedulable(t *testing.T) {
	svc := newTestService(newTestRepo())

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Rocky", Species: "dog", Sex: "male",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	ok, _ := svc.Exists(context.Background(), "user-1", p.ID)
	if !ok {
		t.Fatalf("active pet must exist")
	}

	deceased := StatusDeceased
	if _, err := svc.Update(context.Background(), "user-1", p.ID, UpdateInput{Status: &deceased}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	ok, _ = svc.Exists(context.Background(), "user-1", p.ID)
	if ok {
		t.Fatalf("non-active pet must not be schedulable")
	}
}

func TestService_CountActiveByOwner(t *testing.T) {
	svc := newTestService(newTestRepo())

	p1, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Rocky", Species: "dog", Sex: "male",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		OwnerID: "owner-1", Name: "Misu", Species: "cat", Sex: "female",
	}); err != nil {
		t.Fatalf("Create #2 error: %v", err)
	}

	n, err := svc.CountActiveByOwner(context.Background(), "user-1", "owner-1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 active pets, got %d / %v", n, err)
	}

	if _, err := svc.Archive(context.Background(), "user-1", p1.ID); err != nil {
		t.Fatalf("Archive error: %v", err)
	}

	n, err = svc.CountActiveByOwner(context.Background(), "user-1", "owner-1")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 active pet after archive, got %d / %v", n, err)
	}
}
