package repositories

import (
	"github.com/yigit/learnhub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.Database) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(database),
		CourseRepository:     NewCourseRepository(database),
		EnrollmentRepository: NewEnrollmentRepository(database),
		TokenRepository:      NewTokenRepository(database),
	}
}
