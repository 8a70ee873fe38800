package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"jobboard/internal/app"
	"jobboard/internal/http/metrics"
	"jobboard/internal/http/response"
	"jobboard/internal/upload"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	intake       *upload.Intake
	metrics      *metrics.Collector
}

func NewApplicationHandler(applications *app.ApplicationService, intake *upload.Intake, collector *metrics.Collector) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, intake: intake, metrics: collector}
}

// Submit accepts a multipart submission. Stored files are removed unless
// the application is persisted.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	batch, err := h.intake.Parse(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer batch.Rollback()

	input, err := submitInput(batch)
	if err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.applications.Submit(r.Context(), actor, input)
	if err != nil {
		response.Error(w, err)
		return
	}
	batch.Commit()
	h.metrics.IncUploads(len(batch.Files))
	response.Message(w, http.StatusCreated, "application submitted", map[string]any{"application": created})
}

// submitInput maps form values to the submission. Structured fields arrive
// as JSON strings; skills may also be a comma separated list. Only a missing
// job id fails here, decode errors are left to the service so its checks keep
// their order.
func submitInput(batch *upload.Batch) (app.SubmitInput, error) {
	input := app.SubmitInput{
		JobID:               strings.TrimSpace(batch.Value("jobId")),
		CoverLetter:         batch.Value("coverLetter"),
		Resume:              batch.Resume(),
		Portfolio:           batch.Portfolio(),
		AdditionalDocuments: batch.AdditionalDocuments(),
	}
	if input.JobID == "" {
		input.JobID = strings.TrimSpace(batch.Value("job"))
	}
	if input.JobID == "" {
		return app.SubmitInput{}, validationRequired("jobId")
	}
	fields := map[string]string{}
	decode := func(name string, target any) {
		raw := strings.TrimSpace(batch.Value(name))
		if raw == "" {
			return
		}
		if err := json.Unmarshal([]byte(raw), target); err != nil {
			fields[name] = name + " must be valid JSON"
		}
	}
	decode("personalInfo", &input.PersonalInfo)
	decode("expectedSalary", &input.ExpectedSalary)
	decode("availability", &input.Availability)
	decode("experience", &input.Experience)
	decode("education", &input.Education)
	decode("languages", &input.Languages)
	decode("answers", &input.Answers)
	if raw := strings.TrimSpace(batch.Value("skills")); raw != "" {
		if strings.HasPrefix(raw, "[") {
			decode("skills", &input.Skills)
		} else {
			input.Skills = strings.Split(raw, ",")
		}
	}
	if len(fields) > 0 {
		input.InvalidFields = fields
	}
	return input, nil
}

func applicationQuery(r *http.Request) app.ApplicationQuery {
	q := r.URL.Query()
	return app.ApplicationQuery{
		Status: q.Get("status"),
		JobID:  q.Get("job"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	}
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	page, err := h.applications.List(r.Context(), actor, applicationQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	page, err := h.applications.ListMine(r.Context(), actor, applicationQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *ApplicationHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idParam(r, "jobId")
	if err != nil {
		response.Error(w, err)
		return
	}
	page, err := h.applications.ListByJob(r.Context(), actor, jobID, applicationQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	stats, err := h.applications.Stats(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	found, err := h.applications.Get(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"application": found})
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req app.UpdateStatusInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.UpdateStatus(r.Context(), actor, id, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "application status updated", map[string]any{"application": updated})
}

func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
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
	updated, err := h.applications.Withdraw(r.Context(), actor, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "application withdrawn", map[string]any{"application": updated})
}

func (h *ApplicationHandler) AddNote(w http.ResponseWriter, r *http.Request) {
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
	var req app.NoteInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.AddNote(r.Context(), actor, id, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "note added", map[string]any{"application": updated})
}

func (h *ApplicationHandler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
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
	var req app.InterviewInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.ScheduleInterview(r.Context(), actor, id, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusCreated, "interview scheduled", map[string]any{"application": updated})
}
