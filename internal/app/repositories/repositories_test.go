package repositories_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/app/repositories"
	"github.com/yigit/learnhub/internal/db"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/testutil"
)

func newRepositories(t *testing.T) *repositories.Repositories {
	t.Helper()
	repos, _ := newRepositoriesWithDB(t)
	return repos
}

func newRepositoriesWithDB(t *testing.T) (*repositories.Repositories, *db.Database) {
	t.Helper()
	database := testutil.NewDatabase(t)
	return repositories.NewRepositories(database), database
}

func enrollmentCount(t *testing.T, database *db.Database, userID, courseID int64) int {
	t.Helper()
	var n int
	err := database.DB.QueryRowContext(t.Context(),
		"SELECT COUNT(*) FROM course_user WHERE user_id = ? AND course_id = ?", userID, courseID).Scan(&n)
	if err != nil {
		t.Fatalf("count enrollments: %v", err)
	}
	return n
}

func createUser(t *testing.T, repos *repositories.Repositories, email string, role models.RoleType) *models.User {
	t.Helper()
	user := &models.User{Name: "Jane", Email: email, Password: "hash", RoleType: role}
	if err := repos.UserRepository.Create(t.Context(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createCourse(t *testing.T, repos *repositories.Repositories, slug string, published bool) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:       "Course " + slug,
		Slug:        slug,
		Summary:     "summary",
		Description: "description",
		IsPublished: published,
	}
	if err := repos.CourseRepository.Create(t.Context(), course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func TestUserRepository(t *testing.T) {
	t.Parallel()
	repos := newRepositories(t)
	ctx := t.Context()

	user := createUser(t, repos, "jane@example.com", models.RoleStudent)
	if user.ID == 0 || user.CreatedAt.IsZero() {
		t.Fatalf("Create() did not fill id and timestamps: %+v", user)
	}

	t.Run("duplicate email", func(t *testing.T) {
		dup := &models.User{Name: "Other", Email: "jane@example.com", Password: "hash", RoleType: models.RoleAdmin}
		if err := repos.UserRepository.Create(ctx, dup); !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			t.Fatalf("Create() error = %v, want ErrEmailAlreadyExists", err)
		}
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := repos.UserRepository.GetByEmail(ctx, "jane@example.com")
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if byEmail.ID != user.ID || byEmail.RoleType != models.RoleStudent || byEmail.Password != "hash" {
			t.Errorf("GetByEmail() = %+v", byEmail)
		}

		byID, err := repos.UserRepository.GetByID(ctx, user.ID)
		if err != nil || byID.Email != user.Email {
			t.Errorf("GetByID() = %+v, %v", byID, err)
		}

		if _, err := repos.UserRepository.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, apperrors.ErrUserNotFound) {
			t.Errorf("GetByEmail(missing) error = %v", err)
		}
	})

	t.Run("email exists", func(t *testing.T) {
		exists, err := repos.UserRepository.EmailExists(ctx, "jane@example.com")
		if err != nil || !exists {
			t.Errorf("EmailExists(taken) = %v, %v", exists, err)
		}
		exists, err = repos.UserRepository.EmailExists(ctx, "free@example.com")
		if err != nil || exists {
			t.Errorf("EmailExists(free) = %v, %v", exists, err)
		}
	})
}

func TestCourseRepository(t *testing.T) {
	t.Parallel()
	repos := newRepositories(t)
	ctx := t.Context()

	draft := createCourse(t, repos, "go-101", false)
	live := createCourse(t, repos, "go-201", true)

	t.Run("duplicate slug", func(t *testing.T) {
		dup := &models.Course{Title: "x", Slug: "go-101", Summary: "s", Description: "d"}
		if err := repos.CourseRepository.Create(ctx, dup); !errors.Is(err, apperrors.ErrSlugTaken) {
			t.Fatalf("Create() error = %v, want ErrSlugTaken", err)
		}
	})

	t.Run("visibility filter", func(t *testing.T) {
		if _, err := repos.CourseRepository.GetByID(ctx, draft.ID, true); !errors.Is(err, apperrors.ErrCourseNotFound) {
			t.Errorf("GetByID(draft, published only) error = %v", err)
		}
		got, err := repos.CourseRepository.GetByID(ctx, draft.ID, false)
		if err != nil || got.Slug != "go-101" || got.IsPublished {
			t.Errorf("GetByID(draft) = %+v, %v", got, err)
		}
		got, err = repos.CourseRepository.GetBySlug(ctx, "go-201", true)
		if err != nil || got.ID != live.ID || !got.IsPublished {
			t.Errorf("GetBySlug(live) = %+v, %v", got, err)
		}
	})

	t.Run("list", func(t *testing.T) {
		all, err := repos.CourseRepository.List(ctx, false)
		if err != nil || len(all) != 2 || all[0].ID != draft.ID {
			t.Errorf("List(all) = %+v, %v", all, err)
		}
		published, err := repos.CourseRepository.List(ctx, true)
		if err != nil || len(published) != 1 || published[0].ID != live.ID {
			t.Errorf("List(published) = %+v, %v", published, err)
		}
	})

	t.Run("slugs with base", func(t *testing.T) {
		createCourse(t, repos, "rust", false)
		createCourse(t, repos, "rust-1", false)
		createCourse(t, repos, "rustacean", false)

		slugs, err := repos.CourseRepository.SlugsWithBase(ctx, "rust")
		if err != nil {
			t.Fatalf("SlugsWithBase() error = %v", err)
		}
		slices.Sort(slugs)
		if !slices.Equal(slugs, []string{"rust", "rust-1"}) {
			t.Errorf("SlugsWithBase() = %v", slugs)
		}
	})

	t.Run("update", func(t *testing.T) {
		course, _ := repos.CourseRepository.GetByID(ctx, draft.ID, false)
		course.Title = "Go Basics"
		course.IsPublished = true
		if err := repos.CourseRepository.Update(ctx, course); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got, _ := repos.CourseRepository.GetByID(ctx, draft.ID, true)
		if got == nil || got.Title != "Go Basics" || got.Slug != "go-101" {
			t.Errorf("after Update() = %+v", got)
		}

		missing := &models.Course{ID: 9999, Title: "x", Summary: "s", Description: "d"}
		if err := repos.CourseRepository.Update(ctx, missing); !errors.Is(err, apperrors.ErrCourseNotFound) {
			t.Errorf("Update(missing) error = %v", err)
		}
	})
}

func TestDeleteCourseRemovesEnrollments(t *testing.T) {
	t.Parallel()
	repos, database := newRepositoriesWithDB(t)
	ctx := t.Context()

	student := createUser(t, repos, "s@example.com", models.RoleStudent)
	course := createCourse(t, repos, "go-101", true)
	if err := repos.EnrollmentRepository.Enroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	if err := repos.CourseRepository.Delete(ctx, course.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repos.CourseRepository.GetByID(ctx, course.ID, false); !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Errorf("course still present: %v", err)
	}
	if n := enrollmentCount(t, database, student.ID, course.ID); n != 0 {
		t.Errorf("enrollments after delete = %d", n)
	}

	if err := repos.CourseRepository.Delete(ctx, course.ID); !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestEnrollmentRepository(t *testing.T) {
	t.Parallel()
	repos, database := newRepositoriesWithDB(t)
	ctx := t.Context()

	student := createUser(t, repos, "s@example.com", models.RoleStudent)
	course := createCourse(t, repos, "go-101", true)

	if err := repos.EnrollmentRepository.Enroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if err := repos.EnrollmentRepository.Enroll(ctx, student.ID, course.ID); !errors.Is(err, apperrors.ErrAlreadyEnrolled) {
		t.Fatalf("second Enroll() error = %v, want ErrAlreadyEnrolled", err)
	}

	if n := enrollmentCount(t, database, student.ID, course.ID); n != 1 {
		t.Fatalf("enrollments = %d, want 1", n)
	}

	if err := repos.EnrollmentRepository.Unenroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}
	if err := repos.EnrollmentRepository.Unenroll(ctx, student.ID, course.ID); !errors.Is(err, apperrors.ErrNotEnrolled) {
		t.Fatalf("second Unenroll() error = %v, want ErrNotEnrolled", err)
	}
}

func TestTokenRepository(t *testing.T) {
	t.Parallel()
	repos := newRepositories(t)
	ctx := t.Context()

	user := createUser(t, repos, "s@example.com", models.RoleStudent)

	revoked, err := repos.TokenRepository.IsRevoked(ctx, "jti-live")
	if err != nil || revoked {
		t.Fatalf("IsRevoked() before revoke = %v, %v", revoked, err)
	}

	for i := 0; i < 2; i++ {
		if err := repos.TokenRepository.Revoke(ctx, user.ID, "jti-live", time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("Revoke() #%d error = %v", i+1, err)
		}
	}
	if err := repos.TokenRepository.Revoke(ctx, user.ID, "jti-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Revoke(expired) error = %v", err)
	}

	revoked, err = repos.TokenRepository.IsRevoked(ctx, "jti-live")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked() after revoke = %v, %v", revoked, err)
	}

	purged, err := repos.TokenRepository.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", purged)
	}
	for jti, want := range map[string]bool{"jti-live": true, "jti-old": false} {
		got, err := repos.TokenRepository.IsRevoked(ctx, jti)
		if err != nil || got != want {
			t.Errorf("IsRevoked(%s) = %v, %v; want %v", jti, got, err, want)
		}
	}
}

func TestConcurrentEnrollOnlyOneWins(t *testing.T) {
	t.Parallel()
	repos := newRepositories(t)

	student := createUser(t, repos, "s@example.com", models.RoleStudent)
	course := createCourse(t, repos, "go-101", true)

	const attempts = 8
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			errs <- repos.EnrollmentRepository.Enroll(t.Context(), student.ID, course.ID)
		}()
	}

	var ok, dup int
	for i := 0; i < attempts; i++ {
		switch err := <-errs; {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrAlreadyEnrolled):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != attempts-1 {
		t.Errorf("ok = %d, duplicates = %d", ok, dup)
	}
}
