package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/auth"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/service"
)

// ApplicationHandler serves the apply flow for students and the review
// flow for companies.
type ApplicationHandler struct {
	applications *service.ApplicationService
	logger       *slog.Logger
}

func NewApplicationHandler(applications *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

type submitRequest struct {
	CoverLetter string                `json:"coverLetter"`
	Resume      *model.EmbeddedResume `json:"resume"`
}

// HandleSubmit files an application from the session student to the
// posting in the URL.
//
// HTTP: POST /api/internships/{id}/applications
func (h *ApplicationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	application, err := h.applications.Submit(r.Context(), id.Email, service.SubmitInput{
		InternshipID: chi.URLParam(r, "id"),
		CoverLetter:  req.CoverLetter,
		Resume:       req.Resume,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, application)
}

// HandleHasApplied reports whether the session student already applied to
// the posting. The apply screen uses it to disable the button.
//
// HTTP: GET /api/internships/{id}/applied
func (h *ApplicationHandler) HandleHasApplied(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	applied, err := h.applications.HasApplied(r.Context(), chi.URLParam(r, "id"), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// HandleStudentList returns the session student's applications, newest
// first.
//
// HTTP: GET /api/applications
func (h *ApplicationHandler) HandleStudentList(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	list, err := h.applications.ListByStudent(r.Context(), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleStudentStats returns the session student's per-status counts.
// Every status appears even when its count is zero.
//
// HTTP: GET /api/applications/stats
func (h *ApplicationHandler) HandleStudentStats(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	stats, err := h.applications.StatsByStudent(r.Context(), id.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleInternshipList returns the applications for one posting owned by
// the session company.
//
// HTTP: GET /api/internships/{id}/applications
func (h *ApplicationHandler) HandleInternshipList(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	list, err := h.applications.ListByInternship(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleInternshipStats returns per-status counts for one posting owned
// by the session company.
//
// HTTP: GET /api/internships/{id}/applications/stats
func (h *ApplicationHandler) HandleInternshipStats(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	stats, err := h.applications.StatsByInternship(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleCompanyList returns every application across the session
// company's postings.
//
// HTTP: GET /api/companies/me/applications
func (h *ApplicationHandler) HandleCompanyList(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	list, err := h.applications.ListByCompany(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus moves an application to a new review status. Only
// the company owning the posting may do this.
//
// HTTP: PATCH /api/applications/{id}/status
func (h *ApplicationHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	application, err := h.applications.UpdateStatus(r.Context(), id.UserID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, application)
}
