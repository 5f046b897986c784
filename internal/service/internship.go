package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/repository"
	"github.com/sakif/internmatch/internal/watch"
)

// Validation constants for posting fields.
const (
	MaxTitleLength       = 150
	MaxDescriptionLength = 20000
)

// InternshipService is the single authoritative component for posting
// management. The company-facing and student-facing surfaces both call it;
// there is deliberately no second copy of the CRUD or cascade-delete logic
// anywhere.
type InternshipService struct {
	internships repository.InternshipRepository
	companies   repository.CompanyRepository
	hub         *watch.Hub
	logger      *slog.Logger
}

func NewInternshipService(
	internships repository.InternshipRepository,
	companies repository.CompanyRepository,
	hub *watch.Hub,
	logger *slog.Logger,
) *InternshipService {
	return &InternshipService{
		internships: internships,
		companies:   companies,
		hub:         hub,
		logger:      logger,
	}
}

// InternshipInput carries the mutable posting fields for create and
// full update.
type InternshipInput struct {
	Title        string
	Category     string
	Location     string
	WorkType     string
	Duration     string
	SalaryRange  string
	Slots        int
	Description  string
	Requirements string
	Deadline     string
	IsActive     bool
}

func (in *InternshipInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperror.ValidationFailed("title", "internship title is required")
	}
	if len(in.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Description) > MaxDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if in.Slots < 0 {
		return apperror.ValidationFailed("slots", "slot count cannot be negative")
	}
	return nil
}

// Create publishes a new posting owned by companyID. The company name is
// denormalized onto the posting at create time.
func (s *InternshipService) Create(ctx context.Context, companyID string, in InternshipInput) (*model.Internship, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	internship := &model.Internship{
		CompanyID:    companyID,
		Title:        in.Title,
		CompanyName:  company.Name,
		Category:     strings.TrimSpace(in.Category),
		Location:     strings.TrimSpace(in.Location),
		WorkType:     strings.TrimSpace(in.WorkType),
		Duration:     strings.TrimSpace(in.Duration),
		SalaryRange:  strings.TrimSpace(in.SalaryRange),
		Slots:        in.Slots,
		Description:  in.Description,
		Requirements: in.Requirements,
		Deadline:     strings.TrimSpace(in.Deadline),
		IsActive:     true,
	}

	if err := s.internships.Create(ctx, internship); err != nil {
		s.logger.Error("failed to create internship",
			slog.String("companyID", companyID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating internship: %w", err)
	}

	s.hub.Notify()
	s.logger.Info("internship created",
		slog.String("id", internship.ID),
		slog.String("companyID", companyID),
		slog.String("title", internship.Title),
	)

	return internship, nil
}

// GetByID returns one posting regardless of its active flag; visibility
// filtering belongs to the listing paths.
func (s *InternshipService) GetByID(ctx context.Context, id string) (*model.Internship, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "internship ID is required")
	}
	return s.internships.GetByID(ctx, id)
}

// ListActive returns all visible postings, newest first.
func (s *InternshipService) ListActive(ctx context.Context) ([]model.Internship, error) {
	internships, err := s.internships.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active internships", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing internships: %w", err)
	}
	return internships, nil
}

// ListByCompany returns the company's own postings, active or not.
func (s *InternshipService) ListByCompany(ctx context.Context, companyID string) ([]model.Internship, error) {
	internships, err := s.internships.ListByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("failed to list company internships",
			slog.String("companyID", companyID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing company internships: %w", err)
	}
	return internships, nil
}

// Search filters the active set by a case-insensitive substring match over
// title, company name, location, and description. The filter runs over the
// fetched active set; there is no text index, and at this catalogue size
// one doesn't pay for itself.
func (s *InternshipService) Search(ctx context.Context, query string) ([]model.Internship, error) {
	active, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return active, nil
	}

	matches := make([]model.Internship, 0, len(active))
	for _, i := range active {
		if strings.Contains(strings.ToLower(i.Title), query) ||
			strings.Contains(strings.ToLower(i.CompanyName), query) ||
			strings.Contains(strings.ToLower(i.Location), query) ||
			strings.Contains(strings.ToLower(i.Description), query) {
			matches = append(matches, i)
		}
	}

	return matches, nil
}

// Update rewrites all mutable fields of a posting. Only the owning company
// may update it.
func (s *InternshipService) Update(ctx context.Context, companyID, id string, in InternshipInput) (*model.Internship, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	internship, err := s.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	internship.Title = in.Title
	internship.Category = strings.TrimSpace(in.Category)
	internship.Location = strings.TrimSpace(in.Location)
	internship.WorkType = strings.TrimSpace(in.WorkType)
	internship.Duration = strings.TrimSpace(in.Duration)
	internship.SalaryRange = strings.TrimSpace(in.SalaryRange)
	internship.Slots = in.Slots
	internship.Description = in.Description
	internship.Requirements = in.Requirements
	internship.Deadline = strings.TrimSpace(in.Deadline)
	internship.IsActive = in.IsActive

	if err := s.internships.Update(ctx, internship); err != nil {
		s.logger.Error("failed to update internship",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating internship: %w", err)
	}

	s.hub.Notify()
	s.logger.Info("internship updated", slog.String("id", id))
	return internship, nil
}

// UpdateFields applies a partial field-map update, owner-checked.
func (s *InternshipService) UpdateFields(ctx context.Context, companyID, id string, fields map[string]any) (*model.Internship, error) {
	if _, err := s.owned(ctx, companyID, id); err != nil {
		return nil, err
	}

	if err := s.internships.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.hub.Notify()
	s.logger.Info("internship updated", slog.String("id", id))
	return s.internships.GetByID(ctx, id)
}

// Delete removes a posting and cascades to every application submitted to
// it. The repository runs the cascade atomically; the caller never sees a
// half-deleted posting.
func (s *InternshipService) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.owned(ctx, companyID, id); err != nil {
		return err
	}

	appsDeleted, err := s.internships.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete internship",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting internship: %w", err)
	}

	s.hub.Notify()
	s.logger.Info("internship deleted",
		slog.String("id", id),
		slog.Int("applicationsRemoved", appsDeleted),
	)
	return nil
}

// WatchActive streams snapshots of the active listing: one immediately,
// then a fresh one after every posting mutation. The stream ends when ctx
// is cancelled (the consumer went away) or a read fails.
func (s *InternshipService) WatchActive(ctx context.Context) <-chan []model.Internship {
	return s.watchList(ctx, func() ([]model.Internship, error) {
		return s.internships.ListActive(ctx)
	})
}

// WatchCompany is WatchActive scoped to one company's postings.
func (s *InternshipService) WatchCompany(ctx context.Context, companyID string) <-chan []model.Internship {
	return s.watchList(ctx, func() ([]model.Internship, error) {
		return s.internships.ListByCompany(ctx, companyID)
	})
}

func (s *InternshipService) watchList(ctx context.Context, fetch func() ([]model.Internship, error)) <-chan []model.Internship {
	out := make(chan []model.Internship, 1)
	signals := s.hub.Subscribe()

	go func() {
		defer close(out)
		defer s.hub.Unsubscribe(signals)

		emit := func() bool {
			list, err := fetch()
			if err != nil {
				s.logger.Error("watch snapshot failed, closing stream",
					slog.String("error", err.Error()))
				return false
			}
			select {
			case out <- list:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

// owned fetches a posting and verifies companyID owns it.
func (s *InternshipService) owned(ctx context.Context, companyID, id string) (*model.Internship, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "internship ID is required")
	}

	internship, err := s.internships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if internship.CompanyID != companyID {
		return nil, apperror.Forbidden("you do not own this internship posting")
	}
	return internship, nil
}
