package models

import "time"

// User is the internal identity mapped 1:1 from the external identity store.
// Rows are written by the identity sync job; this service only reads them.
type User struct {
	ID             int64     `json:"id" db:"id"`
	ExternalUserID string    `json:"external_user_id" db:"external_user_id"`
	Email          string    `json:"email" db:"email"`
	Name           string    `json:"name" db:"name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}
