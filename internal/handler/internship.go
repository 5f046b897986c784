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

// InternshipHandler serves posting CRUD, search, and the live list
// streams students and companies subscribe to.
type InternshipHandler struct {
	internships *service.InternshipService
	logger      *slog.Logger
}

func NewInternshipHandler(internships *service.InternshipService, logger *slog.Logger) *InternshipHandler {
	return &InternshipHandler{internships: internships, logger: logger}
}

type internshipRequest struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	WorkType     string `json:"workType"`
	Duration     string `json:"duration"`
	SalaryRange  string `json:"salaryRange"`
	Slots        int    `json:"slots"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Deadline     string `json:"deadline"`
	IsActive     *bool  `json:"isActive"`
}

func (req *internshipRequest) input() service.InternshipInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.InternshipInput{
		Title:        req.Title,
		Category:     req.Category,
		Location:     req.Location,
		WorkType:     req.WorkType,
		Duration:     req.Duration,
		SalaryRange:  req.SalaryRange,
		Slots:        req.Slots,
		Description:  req.Description,
		Requirements: req.Requirements,
		Deadline:     req.Deadline,
		IsActive:     active,
	}
}

// HandleList returns active postings, newest first. A non-empty ?q=
// filters by case-insensitive substring.
//
// HTTP: GET /api/internships
func (h *InternshipHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		list []model.Internship
		err  error
	)
	if query != "" {
		list, err = h.internships.Search(r.Context(), query)
	} else {
		list, err = h.internships.ListActive(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleGet returns one posting by id.
//
// HTTP: GET /api/internships/{id}
func (h *InternshipHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	internship, err := h.internships.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, internship)
}

// HandleCreate publishes a posting owned by the session company.
//
// HTTP: POST /api/internships
func (h *InternshipHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req internshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	internship, err := h.internships.Create(r.Context(), id.UserID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, internship)
}

// HandleUpdate replaces a posting's mutable fields.
//
// HTTP: PUT /api/internships/{id}
func (h *InternshipHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var req internshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	internship, err := h.internships.Update(r.Context(), id.UserID, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

// HandlePatch applies a partial update to a posting.
//
// HTTP: PATCH /api/internships/{id}
func (h *InternshipHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	fields, err := decodeFields(r)
	if err != nil {
		writeError(w, err)
		return
	}

	internship, err := h.internships.UpdateFields(r.Context(), id.UserID, chi.URLParam(r, "id"), fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, internship)
}

// HandleDelete removes a posting and every application submitted to it.
//
// HTTP: DELETE /api/internships/{id}
func (h *InternshipHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	if err := h.internships.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCompanyList returns every posting owned by the session company,
// active or not.
//
// HTTP: GET /api/companies/me/internships
func (h *InternshipHandler) HandleCompanyList(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	list, err := h.internships.ListByCompany(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleWatchActive streams the active posting list as server-sent
// events. The first event is the current snapshot; later events fire
// whenever any posting changes.
//
// HTTP: GET /api/internships/watch
func (h *InternshipHandler) HandleWatchActive(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, h.internships.WatchActive(r.Context()))
}

// HandleWatchCompany streams the session company's own postings.
//
// HTTP: GET /api/companies/me/internships/watch
func (h *InternshipHandler) HandleWatchCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	h.stream(w, r, h.internships.WatchCompany(r.Context(), id.UserID))
}

func (h *InternshipHandler) stream(w http.ResponseWriter, r *http.Request, updates <-chan []model.Internship) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, apperror.ValidationFailed("stream", "streaming is not supported on this connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for list := range updates {
		payload, err := json.Marshal(list)
		if err != nil {
			h.logger.Error("failed to encode watch event", slog.String("error", err.Error()))
			return
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			return
		}
		if _, err := w.Write(payload); err != nil {
			return
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}
