package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type PaymentMethodHandler struct {
	Service *services.PaymentMethodService
}

func (h *PaymentMethodHandler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	created, err := h.Service.CreatePaymentMethod(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PaymentMethodHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Service.ListPaymentMethods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (h *PaymentMethodHandler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	updated, err := h.Service.UpdatePaymentMethod(r.Context(), id, body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PaymentMethodHandler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	deleted, err := h.Service.DeletePaymentMethod(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, models.NewNotFound("método de pago %d no encontrado", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
