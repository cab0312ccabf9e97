package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"Jane"`
	Email     string    `json:"email" db:"email" example:"jane@example.com"`
	Password  string    `json:"-" db:"password"` // bcrypt hash
	RoleType  RoleType  `json:"role" db:"role" example:"student"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
