package pets

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
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc))
		pr.Post("/", createPetHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Put("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", archivePetHandler(svc))
		pr.Post("/{petID}/vaccinations", addVaccinationHandler(svc))
	})
}

type createPetRequest struct {
	OwnerID     string  `json:"owner_id"`
	Name        string  `json:"name"`
	Species     string  `json:"species"`
	Breed       string  `json:"breed"`
	Sex         string  `json:"sex"`
	BirthDate   string  `json:"birth_date"` // YYYY-MM-DD opcional
	WeightKg    float64 `json:"weight_kg"`
	Allergies   string  `json:"allergies"`
	Medications string  `json:"medications"`
	ChipNumber  string  `json:"chip_number"`
}

type updatePetRequest struct {
	// Punteros para update parcial: nil = no tocar.
	Name        *string  `json:"name"`
	Breed       *string  `json:"breed"`
	Sex         *string  `json:"sex"`
	BirthDate   *string  `json:"birth_date"` // YYYY-MM-DD, null para limpiar
	WeightKg    *float64 `json:"weight_kg"`
	Allergies   *string  `json:"allergies"`
	Medications *string  `json:"medications"`
	ChipNumber  *string  `json:"chip_number"`
	Status      *string  `json:"status"`
}

type vaccinationRequest struct {
	Name           string `json:"name"`
	AdministeredAt string `json:"administered_at"` // YYYY-MM-DD opcional
	NextDueAt      string `json:"next_due_at"`     // YYYY-MM-DD opcional
	Notes          string `json:"notes"`
}

type vaccinationResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	AdministeredAt time.Time  `json:"administered_at"`
	NextDueAt      *time.Time `json:"next_due_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

type petResponse struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Name         string                `json:"name"`
	Species      string                `json:"species"`
	Breed        string                `json:"breed,omitempty"`
	Sex          string                `json:"sex,omitempty"`
	BirthDate    *time.Time            `json:"birth_date,omitempty"`
	WeightKg     float64               `json:"weight_kg,omitempty"`
	Allergies    string                `json:"allergies,omitempty"`
	Medications  string                `json:"medications,omitempty"`
	ChipNumber   string                `json:"chip_number,omitempty"`
	Status       string                `json:"status"`
	Vaccinations []vaccinationResponse `json:"vaccinations"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		page, limit := httpx.ParsePagination(r, 20)
		f := ListFilter{
			Status:  Status(r.URL.Query().Get("status")),
			OwnerID: r.URL.Query().Get("owner_id"),
			Search:  r.URL.Query().Get("search"),
			Page:    page,
			Limit:   limit,
		}

		items, total, err := svc.List(r.Context(), claims.UserID, f)
		if err != nil {
			httpx.Internal(w)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		httpx.List(w, out, httpx.NewPagination(page, limit, total))
	}
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			OwnerID:     req.OwnerID,
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Sex:         req.Sex,
			BirthDate:   bd,
			WeightKg:    req.WeightKg,
			Allergies:   req.Allergies,
			Medications: req.Medications,
			ChipNumber:  req.ChipNumber,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		httpx.OK(w, http.StatusCreated, map[string]any{"pet": toPetResponse(p)})
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		p, err := svc.GetByID(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "pet not found")
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"pet": toPetResponse(p)})
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		// Para birth_date: null hay que distinguir "no enviado" de "null";
		// primero a raw map, después al struct (misma estrategia del PATCH de perfil).
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var req updatePetRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				httpx.Error(w, http.StatusBadRequest, "invalid json")
				return
			}
		}

		in := UpdateInput{
			Name:        req.Name,
			Breed:       req.Breed,
			Sex:         req.Sex,
			WeightKg:    req.WeightKg,
			Allergies:   req.Allergies,
			Medications: req.Medications,
			ChipNumber:  req.ChipNumber,
		}

		if v, exists := raw["birth_date"]; exists {
			if string(v) == "null" {
				in.ClearBirth = true
			} else if req.BirthDate != nil {
				t, err := time.Parse("2006-01-02", *req.BirthDate)
				if err != nil {
					httpx.Error(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD or null")
					return
				}
				in.BirthDate = &t
			}
		}

		if req.Status != nil {
			st := Status(*req.Status)
			in.Status = &st
		}

		p, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "petID"), in)
		if err != nil {
			writePetError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"pet": toPetResponse(p)})
	}
}

func archivePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		p, err := svc.Archive(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			writePetError(w, err)
			return
		}

		httpx.OK(w, http.StatusOK, map[string]any{"pet": toPetResponse(p)})
	}
}

func addVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.ClaimsFromContext(r.Context())

		var req vaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := VaccinationInput{Name: req.Name, Notes: req.Notes}

		if strings.TrimSpace(req.AdministeredAt) != "" {
			t, err := time.Parse("2006-01-02", req.AdministeredAt)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "administered_at must be YYYY-MM-DD")
				return
			}
			in.AdministeredAt = &t
		}
		if strings.TrimSpace(req.NextDueAt) != "" {
			t, err := time.Parse("2006-01-02", req.NextDueAt)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "next_due_at must be YYYY-MM-DD")
				return
			}
			in.NextDueAt = &t
		}

		p, err := svc.AddVaccination(r.Context(), claims.UserID, chi.URLParam(r, "petID"), in)
		if err != nil {
			writePetError(w, err)
			return
		}

		httpx.OK(w, http.StatusCreated, map[string]any{"pet": toPetResponse(p)})
	}
}

func writePetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, ErrDuplicateChip):
		httpx.Error(w, http.StatusBadRequest, "chip number already registered")
	case errors.Is(err, ErrOwnerNotFound):
		httpx.Error(w, http.StatusNotFound, "owner not found")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "pet not found")
	default:
		httpx.Internal(w)
	}
}

func toPetResponse(p Pet) petResponse {
	vaccs := make([]vaccinationResponse, 0, len(p.Vaccinations))
	for _, v := range p.Vaccinations {
		vaccs = append(vaccs, vaccinationResponse{
			ID:             v.ID,
			Name:           v.Name,
			AdministeredAt: v.AdministeredAt,
			NextDueAt:      v.NextDueAt,
			Notes:          v.Notes,
		})
	}

	return petResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Species:      string(p.Species),
		Breed:        p.Breed,
		Sex:          string(p.Sex),
		BirthDate:    p.BirthDate,
		WeightKg:     p.WeightKg,
		Allergies:    p.Allergies,
		Medications:  p.Medications,
		ChipNumber:   p.ChipNumber,
		Status:       string(p.Status),
		Vaccinations: vaccs,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
