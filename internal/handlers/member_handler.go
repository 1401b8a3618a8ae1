package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"socioBack/internal/models"
	"socioBack/internal/services"
)

type MemberHandler struct {
	Service *services.MemberService
}

func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	created, err := h.Service.CreateMember(r.Context(), member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MemberHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	f := models.MemberFilter{
		Search:   r.URL.Query().Get("search"),
		DNI:      r.URL.Query().Get("dni"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true"
		f.Active = &active
	}
	members, total, err := h.Service.ListMembers(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: members, Total: total, Page: page})
}

func (h *MemberHandler) GetMemberByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	member, err := h.Service.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	var member models.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	member.ID = id
	updated, err := h.Service.UpdateMember(r.Context(), member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MemberHandler) SetMemberActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	if err := h.Service.SetMemberActive(r.Context(), id, body.Active); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	deleted, err := h.Service.DeleteMember(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, models.NewNotFound("socio %d no encontrado", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		writeError(w, models.NewValidation("id inválido"))
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, models.NewValidation("cuerpo de la solicitud inválido"))
		return
	}
	if err := h.Service.RegisterDeviceToken(r.Context(), id, body.Token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
