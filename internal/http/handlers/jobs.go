package handlers

import (
	"net/http"
	"strings"

	"jobboard/internal/app"
	"jobboard/internal/http/response"
)

type JobHandler struct {
	jobs *app.JobService
}

func NewJobHandler(jobs *app.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func jobQuery(r *http.Request) (app.JobQuery, error) {
	remote, err := boolQuery(r, "remote")
	if err != nil {
		return app.JobQuery{}, err
	}
	q := r.URL.Query()
	return app.JobQuery{
		Status:          q.Get("status"),
		Category:        q.Get("category"),
		Type:            q.Get("type"),
		ExperienceLevel: q.Get("experienceLevel"),
		Location:        q.Get("location"),
		Remote:          remote,
		Query:           strings.TrimSpace(q.Get("search")),
		Skills:          listQuery(r, "skills"),
		Page:            intQuery(r, "page"),
		Limit:           intQuery(r, "limit"),
	}, nil
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := jobQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	page, err := h.jobs.List(r.Context(), query)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	j, err := h.jobs.Get(r.Context(), optionalActor(r), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"job": j})
}

func (h *JobHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	page, err := h.jobs.Recommended(r.Context(), optionalActor(r), intQuery(r, "page"), intQuery(r, "limit"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.Stats(r.Context(), optionalActor(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *JobHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	query, err := jobQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	page, err := h.jobs.Mine(r.Context(), actor, query)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.JobInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.jobs.Create(r.Context(), actor, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "job created", map[string]any{"job": created})
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req app.JobInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.jobs.Update(r.Context(), actor, id, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "job updated", map[string]any{"job": updated})
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.jobs.Delete(r.Context(), actor, id); err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "job deleted", nil)
}
