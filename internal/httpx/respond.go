package httpx

import (
	"encoding/json"
	"net/http"
)

// El writeJSON duplicado por módulo del MVP ya se repetía en cuatro
// handlers, así que quedó extraído acá junto con el envelope estándar:
// - éxito:  {"success": true, "<recurso>": ...}
// - listas: {"success": true, "items": [...], "pagination": {...}}
// - error:  {"success": false, "message": "..."}

// Pagination es el bloque estándar de paginación de los listados.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination calcula pages = ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// JSON escribe un payload arbitrario (el caller arma el envelope con OK/List/Error).
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK escribe {"success":true} más los pares clave/valor del recurso.
func OK(w http.ResponseWriter, status int, kv map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range kv {
		body[k] = v
	}
	JSON(w, status, body)
}

// List escribe el envelope de listado paginado.
func List(w http.ResponseWriter, items any, p Pagination) {
	JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"items":      items,
		"pagination": p,
	})
}

// Error escribe {"success":false,"message":...}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// Internal escribe un 500 genérico sin filtrar detalles del error.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal error")
}
