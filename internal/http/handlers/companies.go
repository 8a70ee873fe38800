package handlers

import (
	"net/http"

	"jobboard/internal/app"
	"jobboard/internal/http/response"
)

type CompanyHandler struct {
	companies *app.CompanyService
}

func NewCompanyHandler(companies *app.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.companies.List(r.Context(), r.URL.Query().Get("search"), intQuery(r, "page"), intQuery(r, "limit"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.companies.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"company": c})
}

func (h *CompanyHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.companies.Mine(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"company": c})
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.CompanyInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.companies.Create(r.Context(), actor, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "company created", map[string]any{"company": created})
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req app.CompanyInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.companies.Update(r.Context(), actor, id, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "company updated", map[string]any{"company": updated})
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.companies.Delete(r.Context(), actor, id); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "company deleted", nil)
}
