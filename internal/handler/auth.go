package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/service"
)

// maxUploadBytes caps multipart bodies (registration with attachment,
// resume/logo uploads).
const maxUploadBytes = 10 << 20 // 10 MiB

// AuthHandler serves registration and login.
//
// Registration accepts two content types: plain JSON, or multipart/form-data
// when the client attaches a resume/logo at sign-up. The attachment part is
// optional either way; the mobile clients let users skip it.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		validate: validator.New(),
		logger:   logger,
	}
}

type registerStudentRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8"`
	FirstName       string   `json:"firstName" validate:"required"`
	LastName        string   `json:"lastName" validate:"required"`
	School          string   `json:"school"`
	Course          string   `json:"course"`
	YearLevel       string   `json:"yearLevel"`
	City            string   `json:"city"`
	Barangay        string   `json:"barangay"`
	Skills          string   `json:"skills"`
	InternshipTypes []string `json:"internshipTypes"`
}

// HandleRegisterStudent creates a student account.
//
// HTTP: POST /api/auth/register/student
func (h *AuthHandler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var (
		req  registerStudentRequest
		file io.Reader
	)

	cleanup, err := h.decodeForm(r, &req, "resume", &file)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	if err := h.checkRequest(req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.RegisterStudent(r.Context(), service.RegisterStudentInput{
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		School:          req.School,
		Course:          req.Course,
		YearLevel:       req.YearLevel,
		City:            req.City,
		Barangay:        req.Barangay,
		Skills:          req.Skills,
		InternshipTypes: req.InternshipTypes,
		Resume:          file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type registerCompanyRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required"`
	Industry    string `json:"industry"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// HandleRegisterCompany creates a company account.
//
// HTTP: POST /api/auth/register/company
func (h *AuthHandler) HandleRegisterCompany(w http.ResponseWriter, r *http.Request) {
	var (
		req  registerCompanyRequest
		file io.Reader
	)

	cleanup, err := h.decodeForm(r, &req, "logo", &file)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	if err := h.checkRequest(req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.RegisterCompany(r.Context(), service.RegisterCompanyInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Industry:    req.Industry,
		Address:     req.Address,
		Description: req.Description,
		Logo:        file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates an email+password pair for either role.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if err := h.checkRequest(req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decodeForm fills req from the request body. JSON bodies decode directly;
// multipart bodies read the struct fields from a "data" JSON part or plain
// form values, and the named file part (if present) into *file. The
// returned cleanup closes the file part.
func (h *AuthHandler) decodeForm(r *http.Request, req any, filePart string, file *io.Reader) (func(), error) {
	cleanup := func() {}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return cleanup, apperror.ValidationFailed("body", "invalid JSON body")
		}
		return cleanup, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return cleanup, apperror.ValidationFailed("body", "invalid or oversized multipart body")
	}

	data := r.FormValue("data")
	if data == "" {
		return cleanup, apperror.ValidationFailed("data", "multipart registration requires a JSON 'data' part")
	}
	if err := json.Unmarshal([]byte(data), req); err != nil {
		return cleanup, apperror.ValidationFailed("data", "invalid JSON in 'data' part")
	}

	f, _, err := r.FormFile(filePart)
	switch {
	case err == nil:
		*file = f
		cleanup = func() { f.Close() }
	case err == http.ErrMissingFile:
		// attachment is optional
	default:
		return cleanup, apperror.ValidationFailed(filePart, "could not read uploaded file")
	}

	return cleanup, nil
}

// checkRequest runs struct-tag validation and converts the first failure
// into a field-level validation error.
func (h *AuthHandler) checkRequest(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		fe := invalid[0]
		return apperror.ValidationFailed(fe.Field(), "field "+fe.Field()+" failed validation ("+fe.Tag()+")")
	}
	return apperror.ValidationFailed("body", "request failed validation")
}

// openFormFile reads the named multipart file part from an upload-only
// endpoint (resume/logo upload). Shared with the profile handlers.
func openFormFile(r *http.Request, part string) (multipart.File, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid or oversized multipart body")
	}

	f, _, err := r.FormFile(part)
	if err != nil {
		return nil, apperror.ValidationFailed(part, "a '"+part+"' file part is required")
	}
	return f, nil
}
