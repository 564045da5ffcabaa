package models

import "time"

// Student is the profile row owned by a Student user.
type Student struct {
	ID              int64     `json:"studentId" db:"id"`
	UserID          int64     `json:"userId" db:"user_id"`
	University      string    `json:"university" db:"university"`
	Degree          string    `json:"degree" db:"degree"`
	GPA             string    `json:"gpa" db:"gpa"`
	Skills          string    `json:"skills" db:"skills"`
	Gender          string    `json:"gender" db:"gender"`
	IsVerified      bool      `json:"isVerified" db:"is_verified"`
	NicDocumentPath string    `json:"nicDocumentPath" db:"nic_document_path"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
