package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"socioBack/internal/models"
)

// parsePagination reads page/page_size query params with sane defaults.
func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, models.NewValidation("parámetro %s inválido, se espera YYYY-MM-DD", name)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses: not found → 404,
// validation → 400, conflict → 409, anything else → 500 with a generic
// message so internal detail never leaks.
func writeError(w http.ResponseWriter, err error) {
	var notFound *models.NotFoundError
	var validation *models.ValidationError
	var conflict *models.ConflictError
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": notFound.Message})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": validation.Message})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{"message": conflict.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error interno del servidor"})
	}
}

type listResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
}
