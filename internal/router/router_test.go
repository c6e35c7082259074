package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/router"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName: "vet-clinic-api",
		BaseURL: "http://localhost:8080",
		Server:  config.ServerConfig{Port: "8080", Env: "development"},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: time.Hour,
			ResetTokenTTL:  15 * time.Minute,
			MinPasswordLen: 6,
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *router.Services) {
	t.Helper()
	handler, svcs := router.NewRouter(router.Options{Config: testConfig()})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, svcs
}

func TestHTTP_EndToEnd_ScheduleFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	token := registerUser(t, ts.URL, "maria@example.com")

	// 1) Alta de dueño y mascota
	ownerID := createOwner(t, ts.URL, token, map[string]any{
		"name":  "Juan Pérez",
		"email": "juan@example.com",
	})
	petID := createPet(t, ts.URL, token, map[string]any{
		"owner_id": ownerID,
		"name":     "Rocky",
		"species":  "dog",
		"sex":      "male",
	})

	// 2) Cita 09:00-09:30
	st, body := doReq(t, ts.URL, "POST", "/api/appointments", token, map[string]any{
		"pet_id":     petID,
		"owner_id":   ownerID,
		"date":       "2026-03-15",
		"start_time": "09:00",
		"end_time":   "09:30",
		"type":       "consultation",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create appointment, got %d body=%s", st, string(body))
	}
	apptID := extractID(t, body, "appointment")

	// 3) Franja solapada => 400
	st, body = doReq(t, ts.URL, "POST", "/api/appointments", token, map[string]any{
		"pet_id":     petID,
		"owner_id":   ownerID,
		"date":       "2026-03-15",
		"start_time": "09:15",
		"end_time":   "09:45",
		"type":       "consultation",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlap, got %d body=%s", st, string(body))
	}
	if !strings.Contains(string(body), "overlaps") {
		t.Fatalf("expected conflict message, got %s", string(body))
	}

	// 4) Borde compartido => OK
	st, body = doReq(t, ts.URL, "POST", "/api/appointments", token, map[string]any{
		"pet_id":     petID,
		"owner_id":   ownerID,
		"date":       "2026-03-15",
		"start_time": "09:30",
		"end_time":   "10:00",
		"type":       "checkup",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 for boundary touch, got %d body=%s", st, string(body))
	}

	// 5) in_progress sella check_in
	st, body = doReq(t, ts.URL, "PATCH", "/api/appointments/"+apptID+"/status", token, map[string]any{
		"status": "in_progress",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 status patch, got %d body=%s", st, string(body))
	}
	var statusResp struct {
		Appointment struct {
			Status      string     `json:"status"`
			CheckInTime *time.Time `json:"check_in_time"`
		} `json:"appointment"`
	}
	if err := json.Unmarshal(body, &statusResp); err != nil {
		t.Fatalf("unmarshal status response: %v", err)
	}
	if statusResp.Appointment.Status != "in_progress" || statusResp.Appointment.CheckInTime == nil {
		t.Fatalf("expected in_progress with check_in stamped, got %s", string(body))
	}

	// 6) Cancelada libera la franja
	st, body = doReq(t, ts.URL, "PATCH", "/api/appointments/"+apptID+"/status", token, map[string]any{
		"status": "cancelled",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 cancel, got %d body=%s", st, string(body))
	}
	st, body = doReq(t, ts.URL, "POST", "/api/appointments", token, map[string]any{
		"pet_id":     petID,
		"owner_id":   ownerID,
		"date":       "2026-03-15",
		"start_time": "09:00",
		"end_time":   "09:30",
		"type":       "vaccination",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 after cancellation frees slot, got %d body=%s", st, string(body))
	}

	// 7) Stats
	st, body = doReq(t, ts.URL, "GET", "/api/appointments/stats", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
	}
	var statsResp struct {
		Stats struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(body, &statsResp); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if statsResp.Stats.Total != 3 {
		t.Fatalf("expected total 3 appointments, got %d body=%s", statsResp.Stats.Total, string(body))
	}
}

func TestHTTP_TenantIsolation_OtherUserGets404(t *testing.T) {
	ts, _ := newTestServer(t)

	tokenA := registerUser(t, ts.URL, "a@example.com")
	tokenB := registerUser(t, ts.URL, "b@example.com")

	ownerID := createOwner(t, ts.URL, tokenA, map[string]any{
		"name":  "Juan",
		"email": "juan@example.com",
	})

	// el dueño de A es invisible para B: 404, no 403
	st, _ := doReq(t, ts.URL, "GET", "/api/owners/"+ownerID, tokenB, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for other tenant, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/api/owners/"+ownerID, tokenA, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for own record, got %d", st)
	}
}

func TestHTTP_Auth_CookieBeatsBearer(t *testing.T) {
	ts, _ := newTestServer(t)

	token := registerUser(t, ts.URL, "maria@example.com")

	// cookie válida + bearer basura: la cookie manda
	req, err := http.NewRequest("GET", ts.URL+"/api/verify", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	req.Header.Set("Authorization", "Bearer not-a-token")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with valid cookie, got %d", res.StatusCode)
	}

	// sin cookie, bearer válido también sirve
	st, _ := doReq(t, ts.URL, "GET", "/api/verify", token, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d", st)
	}

	// sin credenciales: 401
	st, _ = doReq(t, ts.URL, "GET", "/api/verify", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", st)
	}
}

func TestHTTP_Admin_ClientGets403(t *testing.T) {
	ts, svcs := newTestServer(t)

	token := registerUser(t, ts.URL, "maria@example.com")

	st, _ := doReq(t, ts.URL, "GET", "/api/users", token, nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for client on admin route, got %d", st)
	}

	if err := svcs.Users.SeedAdmin(context.Background(), "admin@example.com", "adminpass"); err != nil {
		t.Fatalf("SeedAdmin error: %v", err)
	}

	st, body := doReq(t, ts.URL, "POST", "/api/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "adminpass",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin login, got %d body=%s", st, string(body))
	}
	adminToken := extractToken(t, body)

	st, body = doReq(t, ts.URL, "GET", "/api/users", adminToken, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", res.StatusCode)
	}
}

// -------------------------
// Helpers
// -------------------------

func registerUser(t *testing.T, baseURL, email string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/register", "", map[string]any{
		"username": strings.Split(email, "@")[0],
		"email":    email,
		"password": "secret123",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}
	return extractToken(t, body)
}

func createOwner(t *testing.T, baseURL, token string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/owners", token, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create owner, got %d body=%s", st, string(body))
	}
	return extractID(t, body, "owner")
}

func createPet(t *testing.T, baseURL, token string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/pets", token, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}
	return extractID(t, body, "pet")
}

func extractToken(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Token == "" {
		t.Fatalf("missing token in body=%s", string(body))
	}
	return resp.Token
}

func extractID(t *testing.T, body []byte, key string) string {
	t.Helper()

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal %s response: %v", key, err)
	}
	var entity struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(resp[key], &entity)
	if entity.ID == "" {
		t.Fatalf("%s: missing id body=%s", key, string(body))
	}
	return entity.ID
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
