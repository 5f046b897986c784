package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/internmatch/internal/model"
)

// newTestDB opens a fresh in-memory database with migrations applied.
// Closed automatically when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestStudent(t *testing.T, r *StudentRepo, email string) *model.Student {
	t.Helper()
	student := &model.Student{
		Email:           email,
		PasswordHash:    "$2a$04$fakehashfortesting",
		FirstName:       "Maria",
		LastName:        "Santos",
		School:          "PUP",
		Course:          "BSIT",
		YearLevel:       "4th Year",
		City:            "Manila",
		Skills:          "Go, SQL",
		InternshipTypes: []string{"Remote", "Hybrid"},
	}
	if err := r.Create(context.Background(), student); err != nil {
		t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

func createTestCompany(t *testing.T, r *CompanyRepo, email string) *model.Company {
	t.Helper()
	company := &model.Company{
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortesting",
		Name:         "Acme Corp",
		Industry:     "Software",
		Address:      "Makati",
	}
	if err := r.Create(context.Background(), company); err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	return company
}

func createTestInternship(t *testing.T, r *InternshipRepo, companyID, title string, active bool) *model.Internship {
	t.Helper()
	internship := &model.Internship{
		CompanyID:   companyID,
		Title:       title,
		CompanyName: "Acme Corp",
		Category:    "Engineering",
		Location:    "Manila",
		WorkType:    "Hybrid",
		Slots:       3,
		IsActive:    active,
	}
	if err := r.Create(context.Background(), internship); err != nil {
		t.Fatalf("failed to create test internship: %v", err)
	}
	// created_at granularity: keep successive creates strictly ordered
	time.Sleep(2 * time.Millisecond)
	return internship
}

func createTestApplication(t *testing.T, r *ApplicationRepo, internshipID, email string) *model.Application {
	t.Helper()
	application := &model.Application{
		InternshipID:    internshipID,
		InternshipTitle: "Backend Intern",
		CompanyName:     "Acme Corp",
		StudentEmail:    email,
		CoverLetter:     "I would like to apply.",
		Status:          model.StatusPending,
	}
	if err := r.Create(context.Background(), application); err != nil {
		t.Fatalf("failed to create test application: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	return application
}
