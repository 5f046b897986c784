package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/auth"
	"github.com/sakif/internmatch/internal/service"
)

// ProfileHandler serves the authenticated user's own profile plus the
// public student view companies see when reviewing applicants.
type ProfileHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewProfileHandler(auth *service.AuthService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{auth: auth, logger: logger}
}

// HandleMe returns the profile for the session's role.
//
// HTTP: GET /api/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	switch id.Role {
	case auth.RoleStudent:
		student, err := h.auth.GetStudentProfile(r.Context(), id.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, student)
	case auth.RoleCompany:
		company, err := h.auth.GetCompanyProfile(r.Context(), id.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, company)
	default:
		writeError(w, apperror.Unauthorized("unknown role"))
	}
}

// HandleGetStudent returns the public profile of a student by email.
// Companies use it to review applicants.
//
// HTTP: GET /api/students/{email}
func (h *ProfileHandler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	profile, err := h.auth.GetStudentProfileByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateStudent applies a partial update to the session student's
// profile and returns the updated document.
//
// HTTP: PATCH /api/students/me
func (h *ProfileHandler) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.UpdateStudentProfile(r.Context(), id.UserID, fields); err != nil {
		writeError(w, err)
		return
	}

	student, err := h.auth.GetStudentProfile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleUpdateCompany applies a partial update to the session company's
// profile and returns the updated document.
//
// HTTP: PATCH /api/companies/me
func (h *ProfileHandler) HandleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.UpdateCompanyProfile(r.Context(), id.UserID, fields); err != nil {
		writeError(w, err)
		return
	}

	company, err := h.auth.GetCompanyProfile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// HandleUploadResume replaces the session student's stored resume.
//
// HTTP: POST /api/students/me/resume  (multipart, part "resume")
func (h *ProfileHandler) HandleUploadResume(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	file, err := openFormFile(r, "resume")
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	url, err := h.auth.UploadResume(r.Context(), id.UserID, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"resumeUrl": url})
}

// HandleUploadLogo stores a new logo for the session company.
//
// HTTP: POST /api/companies/me/logo  (multipart, part "logo")
func (h *ProfileHandler) HandleUploadLogo(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	file, err := openFormFile(r, "logo")
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	url, err := h.auth.UploadLogo(r.Context(), id.UserID, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"logoUrl": url})
}

// decodeFields reads a JSON object body for PATCH endpoints. The service
// layer whitelists which keys are writable.
func decodeFields(r *http.Request) (map[string]any, error) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid JSON body")
	}
	if len(fields) == 0 {
		return nil, apperror.ValidationFailed("body", "no fields to update")
	}
	return fields, nil
}
