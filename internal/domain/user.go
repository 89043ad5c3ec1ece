package domain

import "time"

// User represents an account holder. Profile fields beyond username are
// free-form and carry no meaning inside the relationship engine.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	Bio            string
	Location       string
	Website        string
	ProfilePicture string
	CoverPhoto     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
