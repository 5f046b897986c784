package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/auth"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/watch"
)

// Hand-written in-memory mocks for the four repositories. The services
// only see the interfaces, so these swap in for sqlite transparently.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStudentRepo struct {
	students map[string]*model.Student
	nextID   int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	for _, s := range m.students {
		if s.Email == student.Email {
			return apperror.Conflict("an account with this email already exists")
		}
	}
	m.nextID++
	student.ID = fmt.Sprintf("student-%d", m.nextID)
	student.CreatedAt = time.Now().UTC()
	student.UpdatedAt = student.CreatedAt
	stored := *student
	m.students[student.ID] = &stored
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, apperror.NotFound("student", id)
	}
	result := *s
	return &result, nil
}

func (m *mockStudentRepo) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	for _, s := range m.students {
		if s.Email == email {
			result := *s
			return &result, nil
		}
	}
	return nil, apperror.NotFound("student", email)
}

func (m *mockStudentRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	s, ok := m.students[id]
	if !ok {
		return apperror.NotFound("student", id)
	}
	// Only the fields the services actually patch in tests.
	if v, ok := fields["resumeUrl"].(string); ok {
		s.ResumeURL = v
	}
	if v, ok := fields["skills"].(string); ok {
		s.Skills = v
	}
	return nil
}

type mockCompanyRepo struct {
	companies map[string]*model.Company
	nextID    int
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[string]*model.Company)}
}

func (m *mockCompanyRepo) Create(_ context.Context, company *model.Company) error {
	for _, c := range m.companies {
		if c.Email == company.Email {
			return apperror.Conflict("an account with this email already exists")
		}
	}
	m.nextID++
	company.ID = fmt.Sprintf("company-%d", m.nextID)
	company.CreatedAt = time.Now().UTC()
	company.UpdatedAt = company.CreatedAt
	stored := *company
	m.companies[company.ID] = &stored
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, apperror.NotFound("company", id)
	}
	result := *c
	return &result, nil
}

func (m *mockCompanyRepo) GetByEmail(_ context.Context, email string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.Email == email {
			result := *c
			return &result, nil
		}
	}
	return nil, apperror.NotFound("company", email)
}

func (m *mockCompanyRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	c, ok := m.companies[id]
	if !ok {
		return apperror.NotFound("company", id)
	}
	if v, ok := fields["logoUrl"].(string); ok {
		c.LogoURL = v
	}
	if v, ok := fields["industry"].(string); ok {
		c.Industry = v
	}
	return nil
}

type mockInternshipRepo struct {
	internships map[string]*model.Internship
	order       []string
	apps        *mockApplicationRepo
	nextID      int
}

func newMockInternshipRepo() *mockInternshipRepo {
	return &mockInternshipRepo{internships: make(map[string]*model.Internship)}
}

func (m *mockInternshipRepo) Create(_ context.Context, internship *model.Internship) error {
	m.nextID++
	internship.ID = fmt.Sprintf("internship-%d", m.nextID)
	internship.CreatedAt = time.Now().UTC()
	internship.UpdatedAt = internship.CreatedAt
	stored := *internship
	m.internships[internship.ID] = &stored
	m.order = append(m.order, internship.ID)
	return nil
}

func (m *mockInternshipRepo) GetByID(_ context.Context, id string) (*model.Internship, error) {
	i, ok := m.internships[id]
	if !ok {
		return nil, apperror.NotFound("internship", id)
	}
	result := *i
	return &result, nil
}

func (m *mockInternshipRepo) ListActive(_ context.Context) ([]model.Internship, error) {
	result := make([]model.Internship, 0, len(m.order))
	// Newest first, like the real repository.
	for idx := len(m.order) - 1; idx >= 0; idx-- {
		if i := m.internships[m.order[idx]]; i != nil && i.IsActive {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (m *mockInternshipRepo) ListByCompany(_ context.Context, companyID string) ([]model.Internship, error) {
	result := make([]model.Internship, 0, len(m.order))
	for idx := len(m.order) - 1; idx >= 0; idx-- {
		if i := m.internships[m.order[idx]]; i != nil && i.CompanyID == companyID {
			result = append(result, *i)
		}
	}
	return result, nil
}

func (m *mockInternshipRepo) Update(_ context.Context, internship *model.Internship) error {
	if _, ok := m.internships[internship.ID]; !ok {
		return apperror.NotFound("internship", internship.ID)
	}
	internship.UpdatedAt = time.Now().UTC()
	stored := *internship
	m.internships[internship.ID] = &stored
	return nil
}

func (m *mockInternshipRepo) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	i, ok := m.internships[id]
	if !ok {
		return apperror.NotFound("internship", id)
	}
	if v, ok := fields["isActive"].(bool); ok {
		i.IsActive = v
	}
	if v, ok := fields["title"].(string); ok {
		i.Title = v
	}
	return nil
}

func (m *mockInternshipRepo) Delete(_ context.Context, id string) (int, error) {
	if _, ok := m.internships[id]; !ok {
		return 0, apperror.NotFound("internship", id)
	}
	delete(m.internships, id)

	removed := 0
	if m.apps != nil {
		kept := m.apps.applications[:0]
		for _, a := range m.apps.applications {
			if a.InternshipID == id {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		m.apps.applications = kept
	}
	return removed, nil
}

type mockApplicationRepo struct {
	applications []model.Application
	// owners maps internship ID to company ID for ListByCompany.
	owners map[string]string
	nextID int
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{owners: make(map[string]string)}
}

func (m *mockApplicationRepo) Create(_ context.Context, application *model.Application) error {
	for _, a := range m.applications {
		if a.InternshipID == application.InternshipID && a.StudentEmail == application.StudentEmail {
			return apperror.Conflict("you have already applied to this internship")
		}
	}
	m.nextID++
	application.ID = fmt.Sprintf("application-%d", m.nextID)
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}
	m.applications = append(m.applications, *application)
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	for _, a := range m.applications {
		if a.ID == id {
			result := a
			return &result, nil
		}
	}
	return nil, apperror.NotFound("application", id)
}

func (m *mockApplicationRepo) ListByStudent(_ context.Context, email string) ([]model.Application, error) {
	result := make([]model.Application, 0)
	for idx := len(m.applications) - 1; idx >= 0; idx-- {
		if m.applications[idx].StudentEmail == email {
			result = append(result, m.applications[idx])
		}
	}
	return result, nil
}

func (m *mockApplicationRepo) ListByInternship(_ context.Context, internshipID string) ([]model.Application, error) {
	result := make([]model.Application, 0)
	for idx := len(m.applications) - 1; idx >= 0; idx-- {
		if m.applications[idx].InternshipID == internshipID {
			result = append(result, m.applications[idx])
		}
	}
	return result, nil
}

func (m *mockApplicationRepo) ListByCompany(_ context.Context, companyID string) ([]model.Application, error) {
	result := make([]model.Application, 0)
	for idx := len(m.applications) - 1; idx >= 0; idx-- {
		if m.owners[m.applications[idx].InternshipID] == companyID {
			result = append(result, m.applications[idx])
		}
	}
	return result, nil
}

func (m *mockApplicationRepo) Exists(_ context.Context, internshipID, studentEmail string) (bool, error) {
	for _, a := range m.applications {
		if a.InternshipID == internshipID && a.StudentEmail == studentEmail {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) UpdateStatus(_ context.Context, id string, status model.ApplicationStatus) error {
	for idx := range m.applications {
		if m.applications[idx].ID == id {
			m.applications[idx].Status = status
			return nil
		}
	}
	return apperror.NotFound("application", id)
}

// mockBlobStore records saved names without touching disk.
type mockBlobStore struct {
	saved  []string
	failed bool
}

func (m *mockBlobStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if m.failed {
		return "", fmt.Errorf("blob store unavailable")
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.saved = append(m.saved, name)
	return "/blobs/" + name, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *mockStudentRepo, *mockCompanyRepo, *mockBlobStore) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	students := newMockStudentRepo()
	companies := newMockCompanyRepo()
	blobs := &mockBlobStore{}

	svc := NewAuthService(
		students,
		companies,
		tokens,
		auth.NewPasswordServiceForTest(bcrypt.MinCost),
		blobs,
		testLogger(),
	)
	return svc, students, companies, blobs
}

func newTestInternshipService(t *testing.T) (*InternshipService, *mockInternshipRepo, *mockCompanyRepo) {
	t.Helper()
	internships := newMockInternshipRepo()
	companies := newMockCompanyRepo()
	svc := NewInternshipService(internships, companies, watch.NewHub(), testLogger())
	return svc, internships, companies
}

func newTestApplicationService(t *testing.T) (*ApplicationService, *mockApplicationRepo, *mockInternshipRepo) {
	t.Helper()
	applications := newMockApplicationRepo()
	internships := newMockInternshipRepo()
	internships.apps = applications
	svc := NewApplicationService(applications, internships, testLogger())
	return svc, applications, internships
}
