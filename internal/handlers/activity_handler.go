package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	created, err := h.Service.CreateActivity(r.Context(), activity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ActivityHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Service.ListActivities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) GetActivityByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	activity, err := h.Service.GetActivity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	activity.ID = id
	updated, err := h.Service.UpdateActivity(r.Context(), activity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	deleted, err := h.Service.DeleteActivity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, models.NewNotFound("actividad %d no encontrada", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
