package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

// RegisterPayment records a payment and responds with the receipt, not the
// raw payment row.
func (h *PaymentHandler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	userID, _ := r.Context().Value("user_id").(int)
	receipt, err := h.Service.RegisterPayment(r.Context(), req, userID)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			writeError(w, models.NewValidation("referencia inválida en la solicitud"))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *PaymentHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	receipt, err := h.Service.GetReceipt(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	f := models.PaymentFilter{Page: page, PageSize: pageSize}
	f.MembershipID, _ = strconv.Atoi(r.URL.Query().Get("membership_id"))
	f.MemberID, _ = strconv.Atoi(r.URL.Query().Get("member_id"))
	f.MethodID, _ = strconv.Atoi(r.URL.Query().Get("method_id"))

	var err error
	if f.DateFrom, err = parseDateParam(r, "date_from"); err != nil {
		writeError(w, err)
		return
	}
	if f.DateTo, err = parseDateParam(r, "date_to"); err != nil {
		writeError(w, err)
		return
	}

	payments, total, err := h.Service.ListPayments(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: payments, Total: total, Page: page})
}

// VoidPayment soft-deletes a payment. Repeating the void is a no-op.
func (h *PaymentHandler) VoidPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	voided, err := h.Service.VoidPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"voided": voided})
}

func (h *PaymentHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "date_from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseDateParam(r, "date_to")
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.Service.GetStatistics(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
