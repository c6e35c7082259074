package appointments

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
	byID map[string]Appointment
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, userID, id string) error {
	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, userID, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		return Appointment{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context, userID string, f ListFilter) ([]Appointment, int, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (r *testRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if a.UserID == userID && a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	out := make(map[Status]int)
	for _, a := range r.byID {
		if a.UserID == userID {
			out[a.Status]++
		}
	}
	return out, nil
}

func (r *testRepo) CountOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	n := 0
	for _, a := range r.byID {
		if a.UserID == userID && a.Date.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (r *testRepo) CountUpcoming(ctx context.Context, userID string, after time.Time) (int, error) {
	n := 0
	for _, a := range r.byID {
		if a.UserID == userID && a.Date.After(after) {
			if a.Status == StatusScheduled || a.Status == StatusConfirmed {
				n++
			}
		}
	}
	return n, nil
}

// -------------------------
// Helpers
// -------------------------

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	}
	return svc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, svc *Service, start, end string) Appointment {
	t.Helper()
	a, err := svc.Create(context.Background(), "user-1", CreateInput{
		PetID:     "pet-1",
		OwnerID:   "owner-1",
		Date:      day(2026, 3, 15),
		StartTime: start,
		EndTime:   end,
		Type:      TypeConsultation,
	})
	if err != nil {
		t.Fatalf("Create(%s-%s) error: %v", start, end, err)
	}
	return a
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_RejectsOverlap(t *testing.T) {
	svc := newTestService(newTestRepo())

	mustCreate(t, svc, "09:00", "09:30")

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		PetID:     "pet-1",
		OwnerID:   "owner-1",
		Date:      day(2026, 3, 15),
		StartTime: "09:15",
		EndTime:   "09:45",
		Type:      TypeConsultation,
	})
	if err == nil {
		t.Fatalf("expected conflict error")
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %T: %v", err, err)
	}
	if conflict.StartTime != "09:00" || conflict.EndTime != "09:30" {
		t.Fatalf("conflict should reference the existing slot, got %s-%s",
			conflict.StartTime, conflict.EndTime)
	}
}

func TestService_Create_BoundaryTouchIsNotConflict(t *testing.T) {
	svc := newTestService(newTestRepo())

	mustCreate(t, svc, "09:00", "09:30")
	// [09:00,09:30) y [09:30,10:00) comparten solo el borde
	mustCreate(t, svc, "09:30", "10:00")
}

func TestService_Create_TerminalStatusFreesSlot(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "09:00", "09:30")

	if _, err := svc.UpdateStatus(context.Background(), "user-1", a.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	// la franja de una cita cancelada vuelve a estar libre
	mustCreate(t, svc, "09:00", "09:30")
}

func TestService_Create_OtherUserSameSlotIsFine(t *testing.T) {
	svc := newTestService(newTestRepo())

	mustCreate(t, svc, "09:00", "09:30")

	_, err := svc.Create(context.Background(), "user-2", CreateInput{
		PetID:     "pet-2",
		OwnerID:   "owner-2",
		Date:      day(2026, 3, 15),
		StartTime: "09:00",
		EndTime:   "09:30",
		Type:      TypeCheckup,
	})
	if err != nil {
		t.Fatalf("other user should not conflict: %v", err)
	}
}

func TestService_Create_InvalidTimes(t *testing.T) {
	svc := newTestService(newTestRepo())

	cases := []struct {
		name       string
		start, end string
	}{
		{"bad format", "9:00", "09:30"},
		{"out of range", "25:00", "26:00"},
		{"end before start", "10:00", "09:30"},
		{"zero length", "09:00", "09:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", CreateInput{
				PetID:     "pet-1",
				OwnerID:   "owner-1",
				Date:      day(2026, 3, 15),
				StartTime: tc.start,
				EndTime:   tc.end,
				Type:      TypeConsultation,
			})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_DurationDerived(t *testing.T) {
	svc := newTestService(newTestRepo())

	a := mustCreate(t, svc, "09:00", "09:45")
	if a.DurationMinutes != 45 {
		t.Fatalf("expected duration 45, got %d", a.DurationMinutes)
	}
}

func TestService_Update_ExcludesSelfFromConflictScan(t *testing.T) {
	svc := newTestService(newTestRepo())

	a := mustCreate(t, svc, "09:00", "09:30")

	// estirar la misma cita no choca consigo misma
	end := "10:00"
	updated, err := svc.Update(context.Background(), "user-1", a.ID, UpdateInput{
		EndTime: &end,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.DurationMinutes != 60 {
		t.Fatalf("expected duration recomputed to 60, got %d", updated.DurationMinutes)
	}
}

func TestService_Update_ConflictOnReschedule(t *testing.T) {
	svc := newTestService(newTestRepo())

	mustCreate(t, svc, "09:00", "09:30")
	b := mustCreate(t, svc, "11:00", "11:30")

	start, end := "09:15", "09:45"
	_, err := svc.Update(context.Background(), "user-1", b.ID, UpdateInput{
		StartTime: &start,
		EndTime:   &end,
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
}

func TestService_UpdateStatus_StampsAreOneWay(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	a := mustCreate(t, svc, "09:00", "09:30")

	t1 := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(30 * time.Minute)

	svc.now = func() time.Time { return t1 }
	inProgress, err := svc.UpdateStatus(context.Background(), "user-1", a.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if inProgress.CheckInTime == nil || !inProgress.CheckInTime.Equal(t1) {
		t.Fatalf("expected check_in stamped at %v, got %v", t1, inProgress.CheckInTime)
	}

	// repetir la transición no pisa el sello
	svc.now = func() time.Time { return t2 }
	again, err := svc.UpdateStatus(context.Background(), "user-1", a.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus #2 error: %v", err)
	}
	if !again.CheckInTime.Equal(t1) {
		t.Fatalf("check_in must not move on repeat, got %v", again.CheckInTime)
	}

	completed, err := svc.UpdateStatus(context.Background(), "user-1", a.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus completed error: %v", err)
	}
	if completed.CheckOutTime == nil || !completed.CheckOutTime.Equal(t2) {
		t.Fatalf("expected check_out stamped at %v, got %v", t2, completed.CheckOutTime)
	}
	if !completed.CheckInTime.Equal(t1) {
		t.Fatalf("check_in must survive completion")
	}
}

func TestService_Delete_BlockedOnCompleted(t *testing.T) {
	svc := newTestService(newTestRepo())

	a := mustCreate(t, svc, "09:00", "09:30")
	if _, err := svc.UpdateStatus(context.Background(), "user-1", a.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	err := svc.Delete(context.Background(), "user-1", a.ID)
	if !errors.Is(err, ErrDeleteCompleted) {
		t.Fatalf("expected ErrDeleteCompleted, got %v", err)
	}
}

func TestService_Delete_OtherUserGetsNotFound(t *testing.T) {
	svc := newTestService(newTestRepo())

	a := mustCreate(t, svc, "09:00", "09:30")

	err := svc.Delete(context.Background(), "user-2", a.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other tenant, got %v", err)
	}
}

func TestService_Stats(t *testing.T) {
	svc := newTestService(newTestRepo())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	}

	a := mustCreate(t, svc, "09:00", "09:30") // hoy
	mustCreate(t, svc, "10:00", "10:30")      // hoy

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		PetID:     "pet-1",
		OwnerID:   "owner-1",
		Date:      day(2026, 3, 20),
		StartTime: "09:00",
		EndTime:   "09:30",
		Type:      TypeVaccination,
	}); err != nil {
		t.Fatalf("Create future error: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), "user-1", a.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}

	stats, err := svc.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if stats.Today != 2 {
		t.Fatalf("expected 2 today, got %d", stats.Today)
	}
	if stats.Upcoming != 1 {
		t.Fatalf("expected 1 upcoming, got %d", stats.Upcoming)
	}
	if stats.ByStatus[StatusCompleted] != 1 || stats.ByStatus[StatusScheduled] != 2 {
		t.Fatalf("unexpected by_status: %#v", stats.ByStatus)
	}
}
