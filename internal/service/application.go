package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/repository"
)

const MaxCoverLetterLength = 10000

// ApplicationService handles the apply flow and application review.
type ApplicationService struct {
	applications repository.ApplicationRepository
	internships  repository.InternshipRepository
	logger       *slog.Logger
}

func NewApplicationService(
	applications repository.ApplicationRepository,
	internships repository.InternshipRepository,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		internships:  internships,
		logger:       logger,
	}
}

// SubmitInput carries what a student sends when applying. Resume is the
// optional inline attachment (content + metadata), distinct from the
// profile resume which lives in blob storage.
type SubmitInput struct {
	InternshipID string
	CoverLetter  string
	Resume       *model.EmbeddedResume
}

// Submit files an application for the given student.
//
// The existence probe gives a friendly duplicate error up front; the
// storage layer's unique constraint catches the race where two submissions
// for the same pair pass the probe concurrently, the loser gets the same
// conflict error.
func (s *ApplicationService) Submit(ctx context.Context, studentEmail string, in SubmitInput) (*model.Application, error) {
	internshipID := strings.TrimSpace(in.InternshipID)
	if internshipID == "" {
		return nil, apperror.ValidationFailed("internshipId", "internship ID is required")
	}
	if len(in.CoverLetter) > MaxCoverLetterLength {
		return nil, apperror.ValidationFailed("coverLetter",
			fmt.Sprintf("cover letter must be %d characters or less", MaxCoverLetterLength))
	}

	internship, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !internship.IsActive {
		return nil, apperror.ValidationFailed("internshipId", "this internship is no longer accepting applications")
	}

	exists, err := s.applications.Exists(ctx, internshipID, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("checking for existing application: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("you have already applied to this internship")
	}

	application := &model.Application{
		InternshipID:    internshipID,
		InternshipTitle: internship.Title,
		CompanyName:     internship.CompanyName,
		StudentEmail:    studentEmail,
		CoverLetter:     strings.TrimSpace(in.CoverLetter),
		Status:          model.StatusPending,
		AppliedAt:       time.Now().UTC(),
		Resume:          in.Resume,
	}

	if err := s.applications.Create(ctx, application); err != nil {
		return nil, fmt.Errorf("submitting application: %w", err)
	}

	s.logger.Info("application submitted",
		slog.String("id", application.ID),
		slog.String("internshipID", internshipID),
		slog.String("studentEmail", studentEmail),
	)

	return application, nil
}

// ListByStudent returns the student's applications, newest first.
func (s *ApplicationService) ListByStudent(ctx context.Context, email string) ([]model.Application, error) {
	applications, err := s.applications.ListByStudent(ctx, email)
	if err != nil {
		s.logger.Error("failed to list student applications",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return applications, nil
}

// HasApplied reports whether the student already applied to the posting.
// Backend failures are returned, not folded into false.
func (s *ApplicationService) HasApplied(ctx context.Context, internshipID, email string) (bool, error) {
	return s.applications.Exists(ctx, internshipID, email)
}

// StatsByStudent tallies the student's applications by status. Every
// status appears in the result, zero-valued when absent, so dashboards
// render all buckets without nil checks.
func (s *ApplicationService) StatsByStudent(ctx context.Context, email string) (map[model.ApplicationStatus]int, error) {
	applications, err := s.applications.ListByStudent(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("tallying applications: %w", err)
	}
	return tally(applications), nil
}

// ListByInternship returns a posting's applications to its owner.
func (s *ApplicationService) ListByInternship(ctx context.Context, companyID, internshipID string) ([]model.Application, error) {
	if _, err := s.ownedInternship(ctx, companyID, internshipID); err != nil {
		return nil, err
	}
	return s.applications.ListByInternship(ctx, internshipID)
}

// StatsByInternship tallies one posting's applications by status for its
// owner, zero-filled like StatsByStudent.
func (s *ApplicationService) StatsByInternship(ctx context.Context, companyID, internshipID string) (map[model.ApplicationStatus]int, error) {
	if _, err := s.ownedInternship(ctx, companyID, internshipID); err != nil {
		return nil, err
	}
	applications, err := s.applications.ListByInternship(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("tallying applications: %w", err)
	}
	return tally(applications), nil
}

// ListByCompany returns every application across the company's postings,
// newest first.
func (s *ApplicationService) ListByCompany(ctx context.Context, companyID string) ([]model.Application, error) {
	applications, err := s.applications.ListByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("failed to list company applications",
			slog.String("companyID", companyID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing company applications: %w", err)
	}
	return applications, nil
}

// UpdateStatus moves an application through the review taxonomy. Only the
// company that owns the posting may change it; a status outside the
// taxonomy is a validation failure.
func (s *ApplicationService) UpdateStatus(ctx context.Context, companyID, applicationID, rawStatus string) (*model.Application, error) {
	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of %v", model.AllStatuses()))
	}

	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedInternship(ctx, companyID, application.InternshipID); err != nil {
		return nil, err
	}

	if err := s.applications.UpdateStatus(ctx, applicationID, status); err != nil {
		return nil, fmt.Errorf("updating application status: %w", err)
	}

	application.Status = status
	s.logger.Info("application status updated",
		slog.String("id", applicationID),
		slog.String("status", string(status)),
	)
	return application, nil
}

func (s *ApplicationService) ownedInternship(ctx context.Context, companyID, internshipID string) (*model.Internship, error) {
	internship, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if internship.CompanyID != companyID {
		return nil, apperror.Forbidden("you do not own this internship posting")
	}
	return internship, nil
}

// tally counts applications per status with every status pre-seeded to 0.
// Statuses are validated at decode time, so every record here is in the
// taxonomy.
func tally(applications []model.Application) map[model.ApplicationStatus]int {
	counts := make(map[model.ApplicationStatus]int, len(model.AllStatuses()))
	for _, status := range model.AllStatuses() {
		counts[status] = 0
	}
	for _, a := range applications {
		counts[a.Status]++
	}
	return counts
}
