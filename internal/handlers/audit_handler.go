package handlers

import (
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type AuditHandler struct {
	Service *services.AuditService
}

func (h *AuditHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	f := models.AuditFilter{
		Entity:   r.URL.Query().Get("entity"),
		Page:     page,
		PageSize: pageSize,
	}
	f.UserID, _ = strconv.Atoi(r.URL.Query().Get("user_id"))

	var err error
	if f.DateFrom, err = parseDateParam(r, "date_from"); err != nil {
		writeError(w, err)
		return
	}
	if f.DateTo, err = parseDateParam(r, "date_to"); err != nil {
		writeError(w, err)
		return
	}

	logs, total, err := h.Service.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: logs, Total: total, Page: page})
}
