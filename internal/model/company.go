package model

import "time"

// Company is a registered company account with its public profile.
// Like Student, the ID is the auth identity and PasswordHash is never
// serialized.
type Company struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Industry     string    `json:"industry"`
	Address      string    `json:"address"`
	Description  string    `json:"description"`
	LogoURL      string    `json:"logoUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasLogo reports whether the company has an uploaded logo.
func (c Company) HasLogo() bool {
	return c.LogoURL != ""
}
