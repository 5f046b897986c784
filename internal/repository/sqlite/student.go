package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/internmatch/internal/apperror"
	"github.com/sakif/internmatch/internal/model"
	"github.com/sakif/internmatch/internal/repository"
)

// StudentRepo implements repository.StudentRepository on the shared DB.
type StudentRepo struct {
	db *DB
}

func NewStudentRepo(db *DB) *StudentRepo {
	return &StudentRepo{db: db}
}

// compile-time check that *StudentRepo implements the interface
var _ repository.StudentRepository = (*StudentRepo)(nil)

const studentColumns = `id, email, password_hash, first_name, last_name, school,
	course, year_level, city, barangay, skills, internship_types, resume_url,
	created_at, updated_at`

// Create inserts a new student. The ID is generated here (xid: URL-safe,
// time-ordered) and written back onto the struct, along with timestamps.
// A duplicate email surfaces as a conflict error.
func (r *StudentRepo) Create(ctx context.Context, student *model.Student) error {
	student.ID = xid.New().String()
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	types, err := encodeStringList(student.InternshipTypes)
	if err != nil {
		return fmt.Errorf("sqlite: encoding internship types: %w", err)
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.Email,
		student.PasswordHash,
		student.FirstName,
		student.LastName,
		student.School,
		student.Course,
		student.YearLevel,
		student.City,
		student.Barangay,
		student.Skills,
		types,
		student.ResumeURL,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "students.email") {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by their account ID.
func (r *StudentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	return r.get(ctx, "id", id)
}

// GetByEmail retrieves a student by email (exact match).
func (r *StudentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return r.get(ctx, "email", email)
}

func (r *StudentRepo) get(ctx context.Context, column, value string) (*model.Student, error) {
	var (
		s        model.Student
		rawTypes string
	)

	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE `+column+` = ?`,
		value,
	).Scan(
		&s.ID,
		&s.Email,
		&s.PasswordHash,
		&s.FirstName,
		&s.LastName,
		&s.School,
		&s.Course,
		&s.YearLevel,
		&s.City,
		&s.Barangay,
		&s.Skills,
		&rawTypes,
		&s.ResumeURL,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("student", value)
		}
		return nil, fmt.Errorf("sqlite: getting student by %s %s: %w", column, value, err)
	}

	s.InternshipTypes = decodeStringList(rawTypes)
	return &s, nil
}

// studentFields maps the model's JSON field names to table columns for
// partial updates. Anything not listed here (id, email, passwordHash,
// timestamps) cannot be changed through UpdateFields.
var studentFields = map[string]string{
	"firstName":       "first_name",
	"lastName":        "last_name",
	"school":          "school",
	"course":          "course",
	"yearLevel":       "year_level",
	"city":            "city",
	"barangay":        "barangay",
	"skills":          "skills",
	"internshipTypes": "internship_types",
	"resumeUrl":       "resume_url",
}

// UpdateFields applies a partial update to a student row.
func (r *StudentRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, r.db.conn, "students", "student", id, fields, studentFields)
}

// updateFields builds and runs a partial UPDATE against a whitelist of
// allowed columns. Shared by the student, company, and internship
// repositories: partial field-map updates are the one operation every
// aggregate supports.
func updateFields(
	ctx context.Context,
	conn *sql.DB,
	table, resource, id string,
	fields map[string]any,
	allowed map[string]string,
) error {
	if len(fields) == 0 {
		return apperror.ValidationFailed("fields", "no fields to update")
	}

	set := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)

	for name, value := range fields {
		column, ok := allowed[name]
		if !ok {
			return apperror.ValidationFailed(name, fmt.Sprintf("unknown or immutable field %q", name))
		}

		// List-valued fields are stored as JSON arrays.
		if column == "internship_types" {
			list, ok := toStringList(value)
			if !ok {
				return apperror.ValidationFailed(name, "internshipTypes must be a string or list of strings")
			}
			encoded, err := encodeStringList(list)
			if err != nil {
				return fmt.Errorf("sqlite: encoding %s: %w", name, err)
			}
			value = encoded
		}

		set = append(set, column+" = ?")
		args = append(args, value)
	}

	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, strings.Join(set, ", "))
	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s %s: %w", resource, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}

	return nil
}

// encodeStringList stores a tag list as a JSON array. A nil slice encodes
// as [] so the column never holds SQL NULL.
func encodeStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeStringList reads a tag list back, tolerating the legacy shape
// where the field holds a bare string instead of an array: "Remote"
// decodes as ["Remote"]. An empty value decodes as an empty list.
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return []string{single}
	}
	// Not JSON at all; treat the raw value as a single tag.
	return []string{raw}
}

// toStringList coerces a partial-update value into a string slice,
// accepting a bare string, []string, or []any of strings (the shape
// encoding/json produces for map[string]any bodies).
func toStringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
