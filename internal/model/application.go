package model

import (
	"fmt"
	"time"
)

// ApplicationStatus is the fixed review taxonomy for an application.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "PENDING"
	StatusReviewed    ApplicationStatus = "REVIEWED"
	StatusShortlisted ApplicationStatus = "SHORTLISTED"
	StatusAccepted    ApplicationStatus = "ACCEPTED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

// AllStatuses returns every status in taxonomy order. Used to zero-fill
// tallies so callers always see every bucket, even when empty.
func AllStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusPending,
		StatusReviewed,
		StatusShortlisted,
		StatusAccepted,
		StatusRejected,
	}
}

// ParseStatus validates a raw status string against the taxonomy.
func ParseStatus(raw string) (ApplicationStatus, error) {
	switch ApplicationStatus(raw) {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusAccepted, StatusRejected:
		return ApplicationStatus(raw), nil
	}
	return "", fmt.Errorf("model: unknown application status %q", raw)
}

// EmbeddedResume is a resume attached directly to an application: the
// content travels inline with metadata, unlike the profile resume which
// is a blob-store reference. This mirrors the apply flow where a student
// attaches a one-off file without touching their profile.
type EmbeddedResume struct {
	Content  string `json:"content"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// Application links one Internship to one Student (by email).
//
// InternshipTitle and CompanyName are denormalized at submit time so the
// student's application list survives posting edits and renders without
// joins. At most one application may exist per (InternshipID, StudentEmail)
// pair; the storage layer enforces this with a unique constraint.
type Application struct {
	ID              string            `json:"id"`
	InternshipID    string            `json:"internshipId"`
	InternshipTitle string            `json:"internshipTitle"`
	CompanyName     string            `json:"companyName"`
	StudentEmail    string            `json:"studentEmail"`
	CoverLetter     string            `json:"coverLetter"`
	Status          ApplicationStatus `json:"status"`
	AppliedAt       time.Time         `json:"appliedAt"`
	Resume          *EmbeddedResume   `json:"resume,omitempty"`
}

// HasResume reports whether an inline resume is attached.
func (a Application) HasResume() bool {
	return a.Resume != nil && a.Resume.Content != ""
}
