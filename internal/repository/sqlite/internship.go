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

// InternshipRepo is the single authoritative implementation of internship
// persistence. Both the company-facing and student-facing surfaces go
// through it; company scoping is a query filter, not a second copy of the
// CRUD logic.
type InternshipRepo struct {
	db *DB
}

func NewInternshipRepo(db *DB) *InternshipRepo {
	return &InternshipRepo{db: db}
}

var _ repository.InternshipRepository = (*InternshipRepo)(nil)

const internshipColumns = `id, company_id, title, company_name, category, location,
	work_type, duration, salary_range, slots, description, requirements, deadline,
	is_active, created_at, updated_at`

// Create inserts a new posting, generating its ID and timestamps.
func (r *InternshipRepo) Create(ctx context.Context, internship *model.Internship) error {
	internship.ID = xid.New().String()
	now := time.Now().UTC()
	internship.CreatedAt = now
	internship.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO internships (`+internshipColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		internship.ID,
		internship.CompanyID,
		internship.Title,
		internship.CompanyName,
		internship.Category,
		internship.Location,
		internship.WorkType,
		internship.Duration,
		internship.SalaryRange,
		internship.Slots,
		internship.Description,
		internship.Requirements,
		internship.Deadline,
		internship.IsActive,
		internship.CreatedAt,
		internship.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating internship: %w", err)
	}

	return nil
}

func (r *InternshipRepo) GetByID(ctx context.Context, id string) (*model.Internship, error) {
	var i model.Internship

	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+internshipColumns+` FROM internships WHERE id = ?`,
		id,
	).Scan(scanInternship(&i)...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("internship", id)
		}
		return nil, fmt.Errorf("sqlite: getting internship %s: %w", id, err)
	}

	return &i, nil
}

// ListActive returns all visible postings, newest first. Recency ordering
// uses created_at on every path; the listing and the company view must
// never disagree about what "newest" means.
func (r *InternshipRepo) ListActive(ctx context.Context) ([]model.Internship, error) {
	return r.list(ctx,
		`SELECT `+internshipColumns+` FROM internships
		 WHERE is_active = 1
		 ORDER BY created_at DESC`)
}

// ListByCompany returns every posting owned by the company, active or not,
// newest first.
func (r *InternshipRepo) ListByCompany(ctx context.Context, companyID string) ([]model.Internship, error) {
	return r.list(ctx,
		`SELECT `+internshipColumns+` FROM internships
		 WHERE company_id = ?
		 ORDER BY created_at DESC`,
		companyID)
}

func (r *InternshipRepo) list(ctx context.Context, query string, args ...any) ([]model.Internship, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing internships: %w", err)
	}
	defer rows.Close()

	internships := make([]model.Internship, 0, 16)
	for rows.Next() {
		var i model.Internship
		if err := rows.Scan(scanInternship(&i)...); err != nil {
			return nil, fmt.Errorf("sqlite: scanning internship row: %w", err)
		}
		internships = append(internships, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating internships: %w", err)
	}

	return internships, nil
}

// scanInternship returns the scan targets in column order; shared by the
// single-row and multi-row readers so the column list lives in one place.
func scanInternship(i *model.Internship) []any {
	return []any{
		&i.ID,
		&i.CompanyID,
		&i.Title,
		&i.CompanyName,
		&i.Category,
		&i.Location,
		&i.WorkType,
		&i.Duration,
		&i.SalaryRange,
		&i.Slots,
		&i.Description,
		&i.Requirements,
		&i.Deadline,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
}

// Update rewrites all mutable fields from the given record. ID, company_id,
// and created_at are immutable.
func (r *InternshipRepo) Update(ctx context.Context, internship *model.Internship) error {
	internship.UpdatedAt = time.Now().UTC()

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE internships
		 SET title = ?, company_name = ?, category = ?, location = ?, work_type = ?,
		     duration = ?, salary_range = ?, slots = ?, description = ?,
		     requirements = ?, deadline = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		internship.Title,
		internship.CompanyName,
		internship.Category,
		internship.Location,
		internship.WorkType,
		internship.Duration,
		internship.SalaryRange,
		internship.Slots,
		internship.Description,
		internship.Requirements,
		internship.Deadline,
		internship.IsActive,
		internship.UpdatedAt,
		internship.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating internship %s: %w", internship.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("internship", internship.ID)
	}

	return nil
}

var internshipFields = map[string]string{
	"title":        "title",
	"category":     "category",
	"location":     "location",
	"workType":     "work_type",
	"duration":     "duration",
	"salaryRange":  "salary_range",
	"slots":        "slots",
	"description":  "description",
	"requirements": "requirements",
	"deadline":     "deadline",
	"isActive":     "is_active",
}

// UpdateFields applies a partial update to a posting.
func (r *InternshipRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, r.db.conn, "internships", "internship", id, fields, internshipFields)
}

// Delete removes the internship and all its applications in a single
// transaction: either everything disappears or nothing does. A concurrent
// reader never observes the posting gone with applications remaining, or
// the reverse. Returns the number of applications removed.
func (r *InternshipRepo) Delete(ctx context.Context, id string) (int, error) {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	// Applications first: they reference the internship row.
	appResult, err := tx.ExecContext(ctx,
		`DELETE FROM applications WHERE internship_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting applications for internship %s: %w", id, err)
	}
	appsDeleted, err := appResult.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking deleted applications: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM internships WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting internship %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Rollback discards the application deletes too.
		return 0, apperror.NotFound("internship", id)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing cascade delete of internship %s: %w", id, err)
	}

	return int(appsDeleted), nil
}
