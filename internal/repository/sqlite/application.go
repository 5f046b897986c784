package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/repository"
)

// ApplicationRepo implements repository.ApplicationRepository.
type ApplicationRepo struct {
	db *DB
}

func NewApplicationRepo(db *DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

const applicationColumns = `id, internship_id, internship_title, company_name,
	student_email, cover_letter, status, applied_at, resume_content,
	resume_file_name, resume_size, resume_mime_type`

// Create inserts a new application. The unique index on
// (internship_id, student_email) turns a concurrent double-submit into a
// conflict error here, regardless of what the caller checked beforehand.
func (r *ApplicationRepo) Create(ctx context.Context, application *model.Application) error {
	application.ID = xid.New().String()
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}

	resume := application.Resume
	if resume == nil {
		resume = &model.EmbeddedResume{}
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO applications (`+applicationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		application.ID,
		application.InternshipID,
		application.InternshipTitle,
		application.CompanyName,
		application.StudentEmail,
		application.CoverLetter,
		string(application.Status),
		application.AppliedAt,
		resume.Content,
		resume.FileName,
		resume.Size,
		resume.MimeType,
	)
	if err != nil {
		if isUniqueViolation(err, "applications.internship_id") {
			return apperror.Conflict("you have already applied to this internship")
		}
		return fmt.Errorf("sqlite: creating application: %w", err)
	}

	return nil
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)

	app, err := scanApplication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting application %s: %w", id, err)
	}

	return app, nil
}

// ListByStudent returns the student's applications, newest first.
func (r *ApplicationRepo) ListByStudent(ctx context.Context, email string) ([]model.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE student_email = ?
		 ORDER BY applied_at DESC`,
		email)
}

// ListByInternship returns all applications for one posting, newest first.
func (r *ApplicationRepo) ListByInternship(ctx context.Context, internshipID string) ([]model.Application, error) {
	return r.list(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE internship_id = ?
		 ORDER BY applied_at DESC`,
		internshipID)
}

// ListByCompany returns applications across all of the company's postings
// in one join query, ordered by the stored applied timestamp rather than a
// display string.
func (r *ApplicationRepo) ListByCompany(ctx context.Context, companyID string) ([]model.Application, error) {
	return r.list(ctx,
		`SELECT a.id, a.internship_id, a.internship_title, a.company_name,
		        a.student_email, a.cover_letter, a.status, a.applied_at,
		        a.resume_content, a.resume_file_name, a.resume_size, a.resume_mime_type
		 FROM applications a
		 JOIN internships i ON i.id = a.internship_id
		 WHERE i.company_id = ?
		 ORDER BY a.applied_at DESC`,
		companyID)
}

func (r *ApplicationRepo) list(ctx context.Context, query string, args ...any) ([]model.Application, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing applications: %w", err)
	}
	defer rows.Close()

	applications := make([]model.Application, 0, 16)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		applications = append(applications, *app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}

	return applications, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanApplication reads one application row. A status outside the taxonomy
// fails the read, so bad rows surface as errors instead of silently vanishing
// from results.
func scanApplication(row rowScanner) (*model.Application, error) {
	var (
		a         model.Application
		rawStatus string
		resume    model.EmbeddedResume
	)

	err := row.Scan(
		&a.ID,
		&a.InternshipID,
		&a.InternshipTitle,
		&a.CompanyName,
		&a.StudentEmail,
		&a.CoverLetter,
		&rawStatus,
		&a.AppliedAt,
		&resume.Content,
		&resume.FileName,
		&resume.Size,
		&resume.MimeType,
	)
	if err != nil {
		return nil, err
	}

	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", a.ID, err)
	}
	a.Status = status

	if resume.Content != "" || resume.FileName != "" {
		a.Resume = &resume
	}

	return &a, nil
}

// Exists is the duplicate-application probe, limited to one row.
func (r *ApplicationRepo) Exists(ctx context.Context, internshipID, studentEmail string) (bool, error) {
	var one int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM applications
		 WHERE internship_id = ? AND student_email = ?
		 LIMIT 1`,
		internshipID, studentEmail,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking application existence: %w", err)
	}
	return true, nil
}

// UpdateStatus moves an application through the review taxonomy.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating application %s status: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", id)
	}

	return nil
}
