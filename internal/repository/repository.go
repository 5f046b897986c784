package repository

import (
	"context"

	"github.com/sakif/internmatch/internal/model"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	// UpdateFields applies a partial update. Keys are model field names
	// (camelCase, matching the JSON shape); unknown keys are rejected.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id string) (*model.Company, error)
	GetByEmail(ctx context.Context, email string) (*model.Company, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type InternshipRepository interface {
	Create(ctx context.Context, internship *model.Internship) error
	GetByID(ctx context.Context, id string) (*model.Internship, error)
	ListActive(ctx context.Context) ([]model.Internship, error)
	ListByCompany(ctx context.Context, companyID string) ([]model.Internship, error)
	// Update rewrites all mutable fields from the given record.
	Update(ctx context.Context, internship *model.Internship) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// Delete removes the internship and every dependent application in one
	// transaction. Returns the number of applications removed.
	Delete(ctx context.Context, id string) (int, error)
}

type ApplicationRepository interface {
	// Create inserts the application. A second application for the same
	// (internshipID, studentEmail) pair fails with a conflict error.
	Create(ctx context.Context, application *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	ListByStudent(ctx context.Context, email string) ([]model.Application, error)
	ListByInternship(ctx context.Context, internshipID string) ([]model.Application, error)
	// ListByCompany returns applications across all of the company's
	// postings, newest first.
	ListByCompany(ctx context.Context, companyID string) ([]model.Application, error)
	Exists(ctx context.Context, internshipID, studentEmail string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error
}
