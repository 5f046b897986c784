// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate, enforce
// rules, and orchestrate; repositories read and write storage. Services
// receive repository interfaces (not concrete sqlite types), so tests
// swap in in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/auth"
	"github.com/sakif/internmatch/internal/blob"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/repository"
)

const MinPasswordLength = 8

// AuthService handles registration, login, profile reads/updates, and the
// profile file uploads (resume, logo).
type AuthService struct {
	students  repository.StudentRepository
	companies repository.CompanyRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	blobs     blob.Store
	logger    *slog.Logger
}

func NewAuthService(
	students repository.StudentRepository,
	companies repository.CompanyRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	blobs blob.Store,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		students:  students,
		companies: companies,
		tokens:    tokens,
		passwords: passwords,
		blobs:     blobs,
		logger:    logger,
	}
}

// AuthResult is the session descriptor returned by registration and login.
type AuthResult struct {
	Role   string `json:"role"`
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// RegisterStudentInput carries everything a student signs up with. Resume
// is optional; when present it is uploaded best-effort (see RegisterStudent).
type RegisterStudentInput struct {
	Email           string
	Password        string
	FirstName       string
	LastName        string
	School          string
	Course          string
	YearLevel       string
	City            string
	Barangay        string
	Skills          string
	InternshipTypes []string
	Resume          io.Reader
}

// RegisterStudent creates a student account and returns a session.
//
// The resume upload is best-effort: a blob-store failure is logged and the
// registration completes without a resume. Losing an optional attachment
// must not cost the student their account.
func (s *AuthService) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*AuthResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	student := &model.Student{
		Email:           email,
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		School:          strings.TrimSpace(in.School),
		Course:          strings.TrimSpace(in.Course),
		YearLevel:       strings.TrimSpace(in.YearLevel),
		City:            strings.TrimSpace(in.City),
		Barangay:        strings.TrimSpace(in.Barangay),
		Skills:          strings.TrimSpace(in.Skills),
		InternshipTypes: in.InternshipTypes,
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("service/auth: creating student: %w", err)
	}

	if in.Resume != nil {
		url, err := s.blobs.Save(ctx, blob.ResumePath(student.ID), in.Resume)
		if err != nil {
			s.logger.Warn("resume upload failed during registration, continuing without resume",
				slog.String("studentID", student.ID),
				slog.String("error", err.Error()),
			)
		} else if err := s.students.UpdateFields(ctx, student.ID, map[string]any{"resumeUrl": url}); err != nil {
			s.logger.Warn("failed to record resume URL, continuing without resume",
				slog.String("studentID", student.ID),
				slog.String("error", err.Error()),
			)
		} else {
			student.ResumeURL = url
		}
	}

	s.logger.Info("student registered",
		slog.String("studentID", student.ID),
		slog.String("email", student.Email),
	)

	return s.session(auth.Identity{UserID: student.ID, Email: student.Email, Role: auth.RoleStudent})
}

// RegisterCompanyInput mirrors RegisterStudentInput for the company side;
// the optional upload is a logo instead of a resume.
type RegisterCompanyInput struct {
	Email       string
	Password    string
	Name        string
	Industry    string
	Address     string
	Description string
	Logo        io.Reader
}

// RegisterCompany creates a company account and returns a session. The
// logo upload is best-effort, symmetric with the student resume.
func (s *AuthService) RegisterCompany(ctx context.Context, in RegisterCompanyInput) (*AuthResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "company name is required")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	company := &model.Company{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Industry:     strings.TrimSpace(in.Industry),
		Address:      strings.TrimSpace(in.Address),
		Description:  strings.TrimSpace(in.Description),
	}

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("service/auth: creating company: %w", err)
	}

	if in.Logo != nil {
		url, err := s.blobs.Save(ctx, blob.LogoPath(company.ID, time.Now()), in.Logo)
		if err != nil {
			s.logger.Warn("logo upload failed during registration, continuing without logo",
				slog.String("companyID", company.ID),
				slog.String("error", err.Error()),
			)
		} else if err := s.companies.UpdateFields(ctx, company.ID, map[string]any{"logoUrl": url}); err != nil {
			s.logger.Warn("failed to record logo URL, continuing without logo",
				slog.String("companyID", company.ID),
				slog.String("error", err.Error()),
			)
		} else {
			company.LogoURL = url
		}
	}

	s.logger.Info("company registered",
		slog.String("companyID", company.ID),
		slog.String("email", company.Email),
	)

	return s.session(auth.Identity{UserID: company.ID, Email: company.Email, Role: auth.RoleCompany})
}

// Login authenticates an email+password pair. The email is probed against
// the student accounts first, then the companies; whichever matches
// determines the session role. An email that matches neither fails with a
// not-found ("orphaned" credentials cannot happen here, but the error
// split between wrong password and no profile is part of the API contract).
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if student, err := s.students.GetByEmail(ctx, email); err == nil {
		if err := s.passwords.Verify(student.PasswordHash, password); err != nil {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return s.session(auth.Identity{UserID: student.ID, Email: student.Email, Role: auth.RoleStudent})
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("service/auth: looking up student %s: %w", email, err)
	}

	if company, err := s.companies.GetByEmail(ctx, email); err == nil {
		if err := s.passwords.Verify(company.PasswordHash, password); err != nil {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return s.session(auth.Identity{UserID: company.ID, Email: company.Email, Role: auth.RoleCompany})
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("service/auth: looking up company %s: %w", email, err)
	}

	return nil, apperror.NotFoundMsg("no student or company profile found for this account")
}

// GetStudentProfile returns the student record for an account ID.
func (s *AuthService) GetStudentProfile(ctx context.Context, userID string) (*model.Student, error) {
	return s.students.GetByID(ctx, userID)
}

// GetCompanyProfile returns the company record for an account ID.
func (s *AuthService) GetCompanyProfile(ctx context.Context, userID string) (*model.Company, error) {
	return s.companies.GetByID(ctx, userID)
}

// GetStudentProfileByEmail returns the public view of a student, for
// companies reviewing an applicant.
func (s *AuthService) GetStudentProfileByEmail(ctx context.Context, email string) (*model.StudentProfile, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	profile := student.Profile()
	return &profile, nil
}

// UpdateStudentProfile applies a partial field update to the caller's own
// profile. Field whitelisting happens in the repository.
func (s *AuthService) UpdateStudentProfile(ctx context.Context, userID string, fields map[string]any) error {
	if err := s.students.UpdateFields(ctx, userID, fields); err != nil {
		return err
	}
	s.logger.Info("student profile updated", slog.String("studentID", userID))
	return nil
}

// UpdateCompanyProfile applies a partial field update to a company profile.
func (s *AuthService) UpdateCompanyProfile(ctx context.Context, userID string, fields map[string]any) error {
	if err := s.companies.UpdateFields(ctx, userID, fields); err != nil {
		return err
	}
	s.logger.Info("company profile updated", slog.String("companyID", userID))
	return nil
}

// UploadResume stores a student's resume at its fixed path (overwriting
// any previous upload; last write wins is the contract here) and records
// the URL on the profile.
func (s *AuthService) UploadResume(ctx context.Context, userID string, file io.Reader) (string, error) {
	if _, err := s.students.GetByID(ctx, userID); err != nil {
		return "", err
	}

	url, err := s.blobs.Save(ctx, blob.ResumePath(userID), file)
	if err != nil {
		return "", fmt.Errorf("service/auth: storing resume for %s: %w", userID, err)
	}

	if err := s.students.UpdateFields(ctx, userID, map[string]any{"resumeUrl": url}); err != nil {
		return "", err
	}

	s.logger.Info("resume uploaded", slog.String("studentID", userID), slog.String("url", url))
	return url, nil
}

// UploadLogo stores a company logo under a timestamped name and records
// the URL on the profile. Unlike resumes, every upload gets a fresh path.
func (s *AuthService) UploadLogo(ctx context.Context, companyID string, file io.Reader) (string, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return "", err
	}

	url, err := s.blobs.Save(ctx, blob.LogoPath(companyID, time.Now()), file)
	if err != nil {
		return "", fmt.Errorf("service/auth: storing logo for %s: %w", companyID, err)
	}

	if err := s.companies.UpdateFields(ctx, companyID, map[string]any{"logoUrl": url}); err != nil {
		return "", err
	}

	s.logger.Info("logo uploaded", slog.String("companyID", companyID), slog.String("url", url))
	return url, nil
}

func (s *AuthService) session(id auth.Identity) (*AuthResult, error) {
	token, err := s.tokens.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", id.UserID, err)
	}
	return &AuthResult{
		Role:   id.Role,
		Token:  token,
		UserID: id.UserID,
		Email:  id.Email,
	}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return "", apperror.ValidationFailed("email", "email is not valid")
	}
	return email, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
