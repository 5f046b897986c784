package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/auth"
)

func TestRegisterStudent(t *testing.T) {
	svc, students, _, _ := newTestAuthService(t)

	result, err := svc.RegisterStudent(context.Background(), RegisterStudentInput{
		Email:     "  Maria@Example.COM ",
		Password:  "secret-password",
		FirstName: "Maria",
		LastName:  "Santos",
	})
	if err != nil {
		t.Fatalf("RegisterStudent() error = %v", err)
	}

	if result.Role != auth.RoleStudent {
		t.Errorf("Role = %q, want %q", result.Role, auth.RoleStudent)
	}
	if result.Token == "" {
		t.Error("RegisterStudent() returned an empty token")
	}
	// Email is normalized before storage.
	if result.Email != "maria@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", result.Email)
	}

	stored, err := students.GetByID(context.Background(), result.UserID)
	if err != nil {
		t.Fatalf("student was not persisted: %v", err)
	}
	if stored.PasswordHash == "secret-password" || stored.PasswordHash == "" {
		t.Error("password was not hashed before storage")
	}
}

func TestRegisterStudent_ShortPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.RegisterStudent(context.Background(), RegisterStudentInput{
		Email:    "maria@example.com",
		Password: "short",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("RegisterStudent() error = %v, want ErrValidation", err)
	}
}

func TestRegisterStudent_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	input := RegisterStudentInput{
		Email:    "maria@example.com",
		Password: "secret-password",
	}
	if _, err := svc.RegisterStudent(context.Background(), input); err != nil {
		t.Fatalf("first RegisterStudent() error = %v", err)
	}

	_, err := svc.RegisterStudent(context.Background(), input)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second RegisterStudent() error = %v, want ErrConflict", err)
	}
}

func TestRegisterStudent_WithResume(t *testing.T) {
	svc, students, _, blobs := newTestAuthService(t)

	result, err := svc.RegisterStudent(context.Background(), RegisterStudentInput{
		Email:    "maria@example.com",
		Password: "secret-password",
		Resume:   strings.NewReader("%PDF-1.4 fake"),
	})
	if err != nil {
		t.Fatalf("RegisterStudent() error = %v", err)
	}

	if len(blobs.saved) != 1 {
		t.Fatalf("blob store saw %d saves, want 1", len(blobs.saved))
	}
	stored, _ := students.GetByID(context.Background(), result.UserID)
	if !stored.HasResume() {
		t.Error("resume URL was not recorded on the profile")
	}
}

// A failing upload must not fail the registration.
func TestRegisterStudent_ResumeUploadFailureIsNonFatal(t *testing.T) {
	svc, students, _, blobs := newTestAuthService(t)
	blobs.failed = true

	result, err := svc.RegisterStudent(context.Background(), RegisterStudentInput{
		Email:    "maria@example.com",
		Password: "secret-password",
		Resume:   strings.NewReader("%PDF-1.4 fake"),
	})
	if err != nil {
		t.Fatalf("RegisterStudent() error = %v, want account created anyway", err)
	}

	stored, _ := students.GetByID(context.Background(), result.UserID)
	if stored.HasResume() {
		t.Error("resume URL recorded despite failed upload")
	}
}

func TestRegisterCompany_RequiresName(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.RegisterCompany(context.Background(), RegisterCompanyInput{
		Email:    "hr@acme.test",
		Password: "secret-password",
		Name:     "   ",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("RegisterCompany() error = %v, want ErrValidation", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.RegisterStudent(ctx, RegisterStudentInput{
		Email:    "maria@example.com",
		Password: "secret-password",
	}); err != nil {
		t.Fatalf("RegisterStudent() error = %v", err)
	}
	if _, err := svc.RegisterCompany(ctx, RegisterCompanyInput{
		Email:    "hr@acme.test",
		Password: "company-password",
		Name:     "Acme Corp",
	}); err != nil {
		t.Fatalf("RegisterCompany() error = %v", err)
	}

	t.Run("student", func(t *testing.T) {
		result, err := svc.Login(ctx, "maria@example.com", "secret-password")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if result.Role != auth.RoleStudent {
			t.Errorf("Role = %q, want %q", result.Role, auth.RoleStudent)
		}
	})

	t.Run("company", func(t *testing.T) {
		result, err := svc.Login(ctx, "hr@acme.test", "company-password")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if result.Role != auth.RoleCompany {
			t.Errorf("Role = %q, want %q", result.Role, auth.RoleCompany)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "maria@example.com", "wrong")
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Errorf("Login() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "whatever")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Login() error = %v, want ErrNotFound", err)
		}
	})
}

func TestUploadResume_OverwritesFixedPath(t *testing.T) {
	svc, _, _, blobs := newTestAuthService(t)
	ctx := context.Background()

	result, err := svc.RegisterStudent(ctx, RegisterStudentInput{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	if err != nil {
		t.Fatalf("RegisterStudent() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.UploadResume(ctx, result.UserID, strings.NewReader("pdf bytes")); err != nil {
			t.Fatalf("UploadResume() error = %v", err)
		}
	}

	// Both uploads land on the same deterministic path.
	if len(blobs.saved) != 2 || blobs.saved[0] != blobs.saved[1] {
		t.Errorf("resume paths = %v, want the same path twice", blobs.saved)
	}
}

func TestUploadLogo_FreshPathPerUpload(t *testing.T) {
	svc, _, _, blobs := newTestAuthService(t)
	ctx := context.Background()

	result, err := svc.RegisterCompany(ctx, RegisterCompanyInput{
		Email:    "hr@acme.test",
		Password: "company-password",
		Name:     "Acme Corp",
	})
	if err != nil {
		t.Fatalf("RegisterCompany() error = %v", err)
	}

	if _, err := svc.UploadLogo(ctx, result.UserID, strings.NewReader("jpg")); err != nil {
		t.Fatalf("UploadLogo() error = %v", err)
	}
	if len(blobs.saved) != 1 || !strings.HasPrefix(blobs.saved[0], "company_logos/") {
		t.Errorf("logo path = %v, want company_logos/ prefix", blobs.saved)
	}
}
