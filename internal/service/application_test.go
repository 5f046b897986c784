package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/model"
)

func seedInternship(t *testing.T, internships *mockInternshipRepo, companyID string, active bool) *model.Internship {
	t.Helper()
	internship := &model.Internship{
		CompanyID:   companyID,
		Title:       "Backend Intern",
		CompanyName: "Acme Corp",
		IsActive:    active,
	}
	if err := internships.Create(context.Background(), internship); err != nil {
		t.Fatalf("failed to seed internship: %v", err)
	}
	return internship
}

func TestSubmit(t *testing.T) {
	svc, apps, internships := newTestApplicationService(t)
	internship := seedInternship(t, internships, "company-1", true)
	ctx := context.Background()

	application, err := svc.Submit(ctx, "maria@example.com", SubmitInput{
		InternshipID: internship.ID,
		CoverLetter:  "  I would like to apply.  ",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if application.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", application.Status, model.StatusPending)
	}
	if application.InternshipTitle != "Backend Intern" || application.CompanyName != "Acme Corp" {
		t.Errorf("denormalized fields = %q/%q, want posting title and company name",
			application.InternshipTitle, application.CompanyName)
	}
	if application.CoverLetter != "I would like to apply." {
		t.Errorf("CoverLetter = %q, want trimmed", application.CoverLetter)
	}

	applied, err := svc.HasApplied(ctx, internship.ID, "maria@example.com")
	if err != nil {
		t.Fatalf("HasApplied() error = %v", err)
	}
	if !applied {
		t.Error("HasApplied() = false right after Submit()")
	}

	list, err := svc.ListByStudent(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("ListByStudent() error = %v", err)
	}
	if len(list) != 1 || len(apps.applications) != 1 {
		t.Errorf("student has %d applications, want 1", len(list))
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	svc, _, internships := newTestApplicationService(t)
	internship := seedInternship(t, internships, "company-1", true)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "maria@example.com", SubmitInput{InternshipID: internship.ID}); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	_, err := svc.Submit(ctx, "maria@example.com", SubmitInput{InternshipID: internship.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Submit() error = %v, want ErrConflict", err)
	}
}

func TestSubmit_InactivePosting(t *testing.T) {
	svc, _, internships := newTestApplicationService(t)
	internship := seedInternship(t, internships, "company-1", false)

	_, err := svc.Submit(context.Background(), "maria@example.com", SubmitInput{InternshipID: internship.ID})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Submit() to inactive posting error = %v, want ErrValidation", err)
	}
}

func TestSubmit_MissingPosting(t *testing.T) {
	svc, _, _ := newTestApplicationService(t)

	_, err := svc.Submit(context.Background(), "maria@example.com", SubmitInput{InternshipID: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Submit() error = %v, want ErrNotFound", err)
	}
}

// Stats are zero-filled: every status appears even with no applications.
func TestStatsByStudent_ZeroFilled(t *testing.T) {
	svc, _, _ := newTestApplicationService(t)

	stats, err := svc.StatsByStudent(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("StatsByStudent() error = %v", err)
	}

	if len(stats) != len(model.AllStatuses()) {
		t.Fatalf("stats has %d buckets, want %d", len(stats), len(model.AllStatuses()))
	}
	for _, status := range model.AllStatuses() {
		if count, ok := stats[status]; !ok || count != 0 {
			t.Errorf("stats[%s] = %d, want present and 0", status, count)
		}
	}
}

func TestStatsByStudent_CountsPerStatus(t *testing.T) {
	svc, apps, internships := newTestApplicationService(t)
	ctx := context.Background()

	first := seedInternship(t, internships, "company-1", true)
	second := seedInternship(t, internships, "company-1", true)

	a1, err := svc.Submit(ctx, "maria@example.com", SubmitInput{InternshipID: first.ID})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := svc.Submit(ctx, "maria@example.com", SubmitInput{InternshipID: second.ID}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := apps.UpdateStatus(ctx, a1.ID, model.StatusShortlisted); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	stats, err := svc.StatsByStudent(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("StatsByStudent() error = %v", err)
	}
	if stats[model.StatusPending] != 1 || stats[model.StatusShortlisted] != 1 {
		t.Errorf("stats = %v, want 1 pending and 1 shortlisted", stats)
	}
}

func TestListByInternship_OwnerOnly(t *testing.T) {
	svc, _, internships := newTestApplicationService(t)
	internship := seedInternship(t, internships, "company-1", true)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "maria@example.com", SubmitInput{InternshipID: internship.ID}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	_, err := svc.ListByInternship(ctx, "company-2", internship.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("ListByInternship() by non-owner error = %v, want ErrForbidden", err)
	}

	list, err := svc.ListByInternship(ctx, "company-1", internship.ID)
	if err != nil {
		t.Fatalf("ListByInternship() by owner error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("owner sees %d applications, want 1", len(list))
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, _, internships := newTestApplicationService(t)
	internship := seedInternship(t, internships, "company-1", true)
	ctx := context.Background()

	application, err := svc.Submit(ctx, "maria@example.com", SubmitInput{InternshipID: internship.ID})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, "company-1", application.ID, "MAYBE")
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("UpdateStatus() error = %v, want ErrValidation", err)
		}
	})

	t.Run("non-owner", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, "company-2", application.ID, "ACCEPTED")
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("UpdateStatus() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("owner", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, "company-1", application.ID, "ACCEPTED")
		if err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if updated.Status != model.StatusAccepted {
			t.Errorf("Status = %q, want %q", updated.Status, model.StatusAccepted)
		}
	})
}
