package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type MembershipHandler struct {
	Service *services.MembershipService
}

func (h *MembershipHandler) CreateMembership(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	membership, err := h.Service.CreateMembership(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (h *MembershipHandler) GetMemberships(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	f := models.MembershipFilter{
		OnlyUnpaid: r.URL.Query().Get("only_unpaid") == "true",
		Page:       page,
		PageSize:   pageSize,
	}
	f.MemberID, _ = strconv.Atoi(r.URL.Query().Get("member_id"))
	f.Year, _ = strconv.Atoi(r.URL.Query().Get("year"))
	f.Month, _ = strconv.Atoi(r.URL.Query().Get("month"))

	memberships, total, err := h.Service.ListMemberships(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: memberships, Total: total, Page: page})
}

func (h *MembershipHandler) GetMembershipByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	membership, err := h.Service.GetMembership(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

func (h *MembershipHandler) GetMembershipTotals(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	totals, err := h.Service.ComputeTotals(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// ReplaceActivities swaps the whole activity set of the membership.
func (h *MembershipHandler) ReplaceActivities(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	var req models.ReplaceActivitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	membership, err := h.Service.ReplaceActivities(r.Context(), id, req.ActivityIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

func (h *MembershipHandler) AssignActivity(w http.ResponseWriter, r *http.Request) {
	var req models.AssignActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	membership, err := h.Service.AssignActivity(r.Context(), req.MembershipID, req.ActivityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

func (h *MembershipHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	var req models.AssignActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	membership, err := h.Service.RemoveActivity(r.Context(), req.MembershipID, req.ActivityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

func (h *MembershipHandler) DeleteMembership(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	if err := h.Service.DeleteMembership(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
