// Package model defines the data structures used throughout the application.
package model

import "time"

// Student is a registered student account plus their academic profile.
//
// The ID is assigned at registration and doubles as the auth identity;
// tokens carry it as the subject claim. PasswordHash never leaves the
// server (json:"-"); anything public goes through StudentProfile instead.
//
// InternshipTypes holds the preferred work-arrangement tags ("Remote",
// "Hybrid", "On-site"). Old records sometimes stored this field as a bare
// string instead of a list; the storage layer normalizes that to a
// one-element slice on read.
type Student struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	School          string    `json:"school"`
	Course          string    `json:"course"`
	YearLevel       string    `json:"yearLevel"`
	City            string    `json:"city"`
	Barangay        string    `json:"barangay"`
	Skills          string    `json:"skills"`
	InternshipTypes []string  `json:"internshipTypes"`
	ResumeURL       string    `json:"resumeUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FullName joins the first and last name for display.
func (s Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// HasResume reports whether the student has an uploaded resume on file.
func (s Student) HasResume() bool {
	return s.ResumeURL != ""
}

// StudentProfile is the public view of a Student: what a company sees
// when reviewing an applicant. It omits credentials and account metadata.
type StudentProfile struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	School          string   `json:"school"`
	Course          string   `json:"course"`
	YearLevel       string   `json:"yearLevel"`
	City            string   `json:"city"`
	Barangay        string   `json:"barangay"`
	Skills          string   `json:"skills"`
	InternshipTypes []string `json:"internshipTypes"`
	ResumeURL       string   `json:"resumeUrl"`
}

// Profile returns the public StudentProfile view of this student.
func (s Student) Profile() StudentProfile {
	return StudentProfile{
		ID:              s.ID,
		Email:           s.Email,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		School:          s.School,
		Course:          s.Course,
		YearLevel:       s.YearLevel,
		City:            s.City,
		Barangay:        s.Barangay,
		Skills:          s.Skills,
		InternshipTypes: s.InternshipTypes,
		ResumeURL:       s.ResumeURL,
	}
}
