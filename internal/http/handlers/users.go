package handlers

import (
	"net/http"

	"jobboard/internal/app"
	"jobboard/internal/http/response"
)

type UserHandler struct {
	users *app.UserService
}

func NewUserHandler(users *app.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type activationRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	account, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"user": account})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.ProfileInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	account, err := h.users.UpdateProfile(r.Context(), actor, id, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "profile updated", map[string]any{"user": account})
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var req activationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.IsActive == nil {
		response.Error(w, validationRequired("isActive"))
		return
	}
	account, err := h.users.SetActive(r.Context(), actor, id, *req.IsActive)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"user": account})
}

func (h *UserHandler) SaveJob(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.users.SaveJob(r.Context(), actor, jobID); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "job saved", nil)
}

func (h *UserHandler) UnsaveJob(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.users.UnsaveJob(r.Context(), actor, jobID); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "job removed from saved", nil)
}

func (h *UserHandler) SavedJobs(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.users.SavedJobs(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"jobs": items})
}
