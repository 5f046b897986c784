package model

import "time"

// Internship is a posting owned by exactly one company.
//
// CompanyID is the owning company's account ID. CompanyName is denormalized
// onto the posting so listings render without a second lookup; the mobile
// clients show it on every card.
//
// IsActive is a visibility toggle (soft delete): student-facing listings
// only ever see active postings. A hard Delete cascades to all dependent
// applications atomically.
type Internship struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Title        string    `json:"title"`
	CompanyName  string    `json:"companyName"`
	Category     string    `json:"category"`
	Location     string    `json:"location"`
	WorkType     string    `json:"workType"`
	Duration     string    `json:"duration"`
	SalaryRange  string    `json:"salaryRange"`
	Slots        int       `json:"slots"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Deadline     string    `json:"deadline"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
