package dto

import "github.com/yigit/learnhub/internal/app/models"

// CreateCourseRequest holds the validated input of course creation
type CreateCourseRequest struct {
	Title       string `json:"title" example:"Intro to Go"`
	Summary     string `json:"summary" example:"Learn the basics"`
	Description string `json:"description" example:"Types, functions, concurrency"`
}

// UpdateCourseRequest holds the fields supplied for a partial update. Nil
// fields are left unchanged.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Summary     *string `json:"summary,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (r UpdateCourseRequest) IsEmpty() bool {
	return r.Title == nil && r.Summary == nil && r.Description == nil
}

// CourseResponse wraps a single course
type CourseResponse struct {
	Course *models.Course `json:"course"`
}

// CourseListResponse wraps a list of courses
type CourseListResponse struct {
	Courses []models.Course `json:"courses"`
}
