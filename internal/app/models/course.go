package models

import (
	"time"
)

// Course defines the course model based on the 'courses' table
type Course struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Title       string    `json:"title" db:"title" example:"Intro to Go"`
	Slug        string    `json:"slug" db:"slug" example:"intro-to-go"`
	Summary     string    `json:"summary" db:"summary" example:"Learn the basics"`
	Description string    `json:"description" db:"description" example:"Types, functions, concurrency"`
	IsPublished bool      `json:"is_published" db:"is_published" example:"false"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Enrollment links a student to a course ('course_user' table).
type Enrollment struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	CourseID  int64     `json:"course_id" db:"course_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CourseLookup describes how a course is resolved from a path key.
type CourseLookup struct {
	// Key is the raw id or slug taken from the URL.
	Key string
	// PublishedOnly restricts the lookup to published courses.
	PublishedOnly bool
}
