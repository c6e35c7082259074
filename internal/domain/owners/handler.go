package owners

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic-api/internal/auth"
	"vet-clinic-api/internal/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/owners", func(or chi.Router) {
		or.Get("/", listOwnersHandler(svc))
		or.Post("/", createOwnerHandler(svc))
		or.Get("/{ownerID}", getOwnerHandler(svc))
		or.Put("/{ownerID}", updateOwnerHandler(svc))
		or.Delete("/{ownerID}", archiveOwnerHandler(svc))
	})
}

type createOwnerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	DNI     string `json:"dni"`
}

type updateOwnerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	DNI     *string `json:"dni"`
	Status  *string `json:"status"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	DNI       string    `json:"dni,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		page, limit := httpx.ParsePagination(r, 20)
		f := ListFilter{
			Status: Status(r.URL.Query().Get("status")),
			Search: r.URL.Query().Get("search"),
			Page:   page,
			Limit:  limit,
		}

		items, total, err := svc.List(r.Context(), claims.UserID, f)
		if err != nil {
			httpx.Internal(w)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}

		httpx.List(w, out, httpx.NewPagination(page, limit, total))
	}
}

func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req createOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		o, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
			DNI:     req.DNI,
		})
		if err != nil {
			writeOwnerError(w, err)
			return
		}

		httpx.OK(w, http.StatusCreated, map[string]any{"owner": toOwnerResponse(o)})
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		o, err := svc.GetByID(r.Context(), claims.UserID, chi.URLParam(r, "ownerID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "owner not found")
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"owner": toOwnerResponse(o)})
	}
}

func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req updateOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var status *Status
		if req.Status != nil {
			st := Status(*req.Status)
			status = &st
		}

		o, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "ownerID"), UpdateInput{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
			DNI:     req.DNI,
			Status:  status,
		})
		if err != nil {
			writeOwnerError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"owner": toOwnerResponse(o)})
	}
}

func archiveOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		o, err := svc.Archive(r.Context(), claims.UserID, chi.URLParam(r, "ownerID"))
		if err != nil {
			writeOwnerError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"owner": toOwnerResponse(o)})
	}
}

func writeOwnerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, ErrDuplicateEmail):
		httpx.Error(w, http.StatusBadRequest, "owner email already in use")
	case errors.Is(err, ErrDuplicateDNI):
		httpx.Error(w, http.StatusBadRequest, "dni already in use")
	case errors.Is(err, ErrHasActivePets):
		httpx.Error(w, http.StatusBadRequest, "owner has active pets")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "owner not found")
	default:
		httpx.Internal(w)
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		Name:      o.Name,
		Email:     o.Email,
		Phone:     o.Phone,
		Address:   o.Address,
		DNI:       o.DNI,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
