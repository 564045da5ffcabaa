package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID               int64      `json:"id" db:"id" example:"1"`
	Email            string     `json:"email" db:"email" example:"intern@skillpivot.app"`
	Password         string     `json:"-" db:"password"`
	Role             Role       `json:"role" db:"role" example:"Student"`
	FirstName        string     `json:"firstName" db:"first_name" example:"Nimal"`
	LastName         string     `json:"lastName" db:"last_name" example:"Perera"`
	VerificationCode *string    `json:"-" db:"verification_code"`
	OTPExpiry        *time.Time `json:"-" db:"otp_expiry"`
	OTPVerified      bool       `json:"-" db:"otp_verified"`
	IsVerified       bool       `json:"isVerified" db:"is_verified"`
	Location         *string    `json:"location,omitempty" db:"location" example:"Colombo"`
	Industry         *string    `json:"industry,omitempty" db:"industry" example:"Software"`
	ProfilePicture   *string    `json:"profilePicture,omitempty" db:"profile_picture" example:"/uploads/12_profile_1f0c.png"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
