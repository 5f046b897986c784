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

// CompanyRepo implements repository.CompanyRepository on the shared DB.
type CompanyRepo struct {
	db *DB
}

func NewCompanyRepo(db *DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

const companyColumns = `id, email, password_hash, name, industry, address,
	description, logo_url, created_at, updated_at`

// Create inserts a new company account. Same create-once-then-read pattern
// as students: ID and timestamps are generated here.
func (r *CompanyRepo) Create(ctx context.Context, company *model.Company) error {
	company.ID = xid.New().String()
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.Email,
		company.PasswordHash,
		company.Name,
		company.Industry,
		company.Address,
		company.Description,
		company.LogoURL,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "companies.email") {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: creating company: %w", err)
	}

	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	return r.get(ctx, "id", id)
}

func (r *CompanyRepo) GetByEmail(ctx context.Context, email string) (*model.Company, error) {
	return r.get(ctx, "email", email)
}

func (r *CompanyRepo) get(ctx context.Context, column, value string) (*model.Company, error) {
	var c model.Company

	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE `+column+` = ?`,
		value,
	).Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.Name,
		&c.Industry,
		&c.Address,
		&c.Description,
		&c.LogoURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("company", value)
		}
		return nil, fmt.Errorf("sqlite: getting company by %s %s: %w", column, value, err)
	}

	return &c, nil
}

var companyFields = map[string]string{
	"name":        "name",
	"industry":    "industry",
	"address":     "address",
	"description": "description",
	"logoUrl":     "logo_url",
}

// UpdateFields applies a partial update to a company row.
func (r *CompanyRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, r.db.conn, "companies", "company", id, fields, companyFields)
}
