package models

import "time"

// DefaultIndustry is stored for companies created through registration.
const DefaultIndustry = "Not Specified"

// Company is linked to its owning Company user by ContactEmail.
type Company struct {
	ID             int64     `json:"companyId" db:"id"`
	Name           string    `json:"companyName" db:"name"`
	ContactEmail   string    `json:"contactEmail" db:"contact_email"`
	Industry       string    `json:"industry" db:"industry"`
	Website        *string   `json:"website,omitempty" db:"website"`
	Description    *string   `json:"description,omitempty" db:"description"`
	Location       *string   `json:"location,omitempty" db:"location"`
	LogoPath       *string   `json:"logoPath,omitempty" db:"logo_path"`
	IsVerified     bool      `json:"isVerified" db:"is_verified"`
	RegisteredDate time.Time `json:"registeredDate" db:"registered_date"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
