package handlers

import (
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type AttendanceHandler struct {
	Service *services.AttendanceService
}

// VerifyEntry answers the gate decision without recording anything.
func (h *AttendanceHandler) VerifyEntry(w http.ResponseWriter, r *http.Request) {
	dni := r.URL.Query().Get(":dni")
	if dni == "" {
		writeError(w, models.NewValidation("identificador requerido"))
		return
	}
	decision, err := h.Service.CheckStatus(r.Context(), dni)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// RegisterEntry re-runs the check and records the entry when granted.
func (h *AttendanceHandler) RegisterEntry(w http.ResponseWriter, r *http.Request) {
	dni := r.URL.Query().Get(":dni")
	if dni == "" {
		writeError(w, models.NewValidation("identificador requerido"))
		return
	}
	record, err := h.Service.RegisterEntry(r.Context(), dni)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *AttendanceHandler) GetAttendances(w http.ResponseWriter, r *http.Request) {
	f := models.AttendanceFilter{}
	var err error
	if f.Date, err = parseDateParam(r, "date"); err != nil {
		writeError(w, err)
		return
	}
	f.MemberID, _ = strconv.Atoi(r.URL.Query().Get("member_id"))

	records, err := h.Service.ListAttendances(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
