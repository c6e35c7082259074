package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-api/internal/auth"
	"vet-clinic-api/internal/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Get("/", listAppointmentsHandler(svc))
		ar.Post("/", createAppointmentHandler(svc))

		// /stats antes que /{appointmentID} para que chi no lo capture como id.
		ar.Get("/stats", statsHandler(svc))

		ar.Get("/{appointmentID}", getAppointmentHandler(svc))
		ar.Put("/{appointmentID}", updateAppointmentHandler(svc))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc))
		ar.Patch("/{appointmentID}/status", updateStatusHandler(svc))
	})
}

type createAppointmentRequest struct {
	PetID     string `json:"pet_id"`
	OwnerID   string `json:"owner_id"`
	VetID     string `json:"vet_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

type updateAppointmentRequest struct {
	VetID     *string `json:"vet_id"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Type      *string `json:"type"`
	Reason    *string `json:"reason"`
	Notes     *string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type appointmentResponse struct {
	ID              string     `json:"id"`
	PetID           string     `json:"pet_id"`
	OwnerID         string     `json:"owner_id"`
	VetID           string     `json:"vet_id,omitempty"`
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CheckInTime     *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime    *time.Time `json:"check_out_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		page, limit := httpx.ParsePagination(r, 20)
		f := ListFilter{
			Status:  Status(r.URL.Query().Get("status")),
			PetID:   r.URL.Query().Get("pet_id"),
			OwnerID: r.URL.Query().Get("owner_id"),
			VetID:   r.URL.Query().Get("vet_id"),
			Page:    page,
			Limit:   limit,
		}

		if v := r.URL.Query().Get("date"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			f.Date = &t
		}
		if v := r.URL.Query().Get("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
				return
			}
			f.From = &t
		}
		if v := r.URL.Query().Get("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
				return
			}
			f.To = &t
		}

		items, total, err := svc.List(r.Context(), claims.UserID, f)
		if err != nil {
			httpx.Internal(w)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}

		httpx.List(w, out, httpx.NewPagination(page, limit, total))
	}
}

// createAppointmentHandler godoc
// @Summary Crear cita
// @Description Crea una cita. Rechaza con 400 cualquier franja que se solape con otra cita no terminal del mismo usuario en el mismo día (intervalos semiabiertos: tocar el borde no es conflicto).
// @Tags appointments
// @Accept json
// @Produce json
// @Param payload body createAppointmentRequest true "Datos de la cita; date en YYYY-MM-DD, horas en HH:mm"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/appointments [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			PetID:     req.PetID,
			OwnerID:   req.OwnerID,
			VetID:     req.VetID,
			Date:      date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Type:      Type(req.Type),
			Reason:    req.Reason,
			Notes:     req.Notes,
		})
		if err != nil {
			writeAppointmentError(w, err)
			return
		}

		httpx.OK(w, http.StatusCreated, map[string]any{"appointment": toAppointmentResponse(a)})
	}
}

func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		a, err := svc.GetByID(r.Context(), claims.UserID, chi.URLParam(r, "appointmentID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "appointment not found")
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"appointment": toAppointmentResponse(a)})
	}
}

func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req updateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := UpdateInput{
			VetID:     req.VetID,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Reason:    req.Reason,
			Notes:     req.Notes,
		}

		if req.Date != nil {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.Date))
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			in.Date = &t
		}
		if req.Type != nil {
			ty := Type(*req.Type)
			in.Type = &ty
		}

		a, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "appointmentID"), in)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"appointment": toAppointmentResponse(a)})
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.UpdateStatus(r.Context(), claims.UserID, chi.URLParam(r, "appointmentID"), Status(req.Status))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"appointment": toAppointmentResponse(a)})
	}
}

func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "appointmentID")); err != nil {
			writeAppointmentError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"message": "appointment deleted"})
	}
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		stats, err := svc.Stats(r.Context(), claims.UserID)
		if err != nil {
			httpx.Internal(w)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"stats": stats})
	}
}

func writeAppointmentError(w http.ResponseWriter, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		httpx.Error(w, http.StatusBadRequest, conflict.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, ErrDeleteCompleted):
		httpx.Error(w, http.StatusBadRequest, "completed appointments cannot be deleted")
	case errors.Is(err, ErrPetNotFound):
		httpx.Error(w, http.StatusNotFound, "pet not found")
	case errors.Is(err, ErrOwnerNotFound):
		httpx.Error(w, http.StatusNotFound, "owner not found")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "appointment not found")
	default:
		httpx.Internal(w)
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		PetID:           a.PetID,
		OwnerID:         a.OwnerID,
		VetID:           a.VetID,
		Date:            a.Date.Format("2006-01-02"),
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationMinutes: a.DurationMinutes,
		Type:            string(a.Type),
		Status:          string(a.Status),
		Reason:          a.Reason,
		Notes:           a.Notes,
		CheckInTime:     a.CheckInTime,
		CheckOutTime:    a.CheckOutTime,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
