package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account kinds. The string values are what the
// users.role column stores.
type Role string

const (
	RoleStudent Role = "Student"
	RoleCompany Role = "Company"
	RoleAdmin   Role = "Admin"
)

// roleAliases maps lower-cased client labels onto stored roles.
var roleAliases = map[string]Role{
	"student":            RoleStudent,
	"intern":             RoleStudent,
	"internship seeker":  RoleStudent,
	"internship seekers": RoleStudent,
	"company":            RoleCompany,
	"admin":              RoleAdmin,
}

// ParseRole resolves a client-supplied role label, case-insensitively.
func ParseRole(label string) (Role, error) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", fmt.Errorf("unknown role %q", label)
	}
	return role, nil
}

// Valid reports whether r is one of the stored roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// DisplayName is the label shown to clients. Students are presented as interns.
func (r Role) DisplayName() string {
	if r == RoleStudent {
		return "Intern"
	}
	return string(r)
}

// JobPostStatus is the moderation state of a job post.
type JobPostStatus string

const (
	JobPostPending JobPostStatus = "Pending"
	JobPostActive  JobPostStatus = "Active"
	JobPostClosed  JobPostStatus = "Closed"
	JobPostFlagged JobPostStatus = "Flagged"
)

// Valid reports whether s is a known job post status.
func (s JobPostStatus) Valid() bool {
	switch s {
	case JobPostPending, JobPostActive, JobPostClosed, JobPostFlagged:
		return true
	}
	return false
}

// ApplicationStatus is the review state of a job application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationReviewed ApplicationStatus = "Reviewed"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}
