// Package services holds the business logic behind the HTTP handlers.
//
//   - AuthService: registration, admin creation, login and logout
//   - CourseService: course catalogue, publication and enrollment
package services

import (
	"context"

	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/pkg/auth"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CourseStore persists courses.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64, publishedOnly bool) (*models.Course, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Course, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Course, error)
	SlugsWithBase(ctx context.Context, base string) ([]string, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// EnrollmentStore persists the student to course relation.
type EnrollmentStore interface {
	Enroll(ctx context.Context, userID, courseID int64) error
	Unenroll(ctx context.Context, userID, courseID int64) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(user *models.User) (*auth.IssuedToken, error)
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Check(hashedPassword, password string) bool
	CheckDummy(password string)
}

var (
	_ TokenIssuer = (*auth.JWTService)(nil)
	_ Hasher      = (*auth.PasswordHasher)(nil)
)

