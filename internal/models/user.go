package models

// User is a back-office operator allowed to sign in.
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never exposed in JSON
}
