package handlers

import (
	"net/http"

	"socioBack/internal/services"
)

type BackupHandler struct {
	Service *services.BackupService
}

func (h *BackupHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.RunBackup(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
