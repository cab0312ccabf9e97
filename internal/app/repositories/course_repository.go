package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/db"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/dberrors"
	"github.com/yigit/learnhub/internal/pkg/logger"
)

var courseColumns = []string{"id", "title", "slug", "summary", "description", "is_published", "created_at", "updated_at"}

// CourseRepository handles course database operations
type CourseRepository struct {
	db *db.Database
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(database *db.Database) *CourseRepository {
	return &CourseRepository{
		db: database,
		sb: database.Builder(),
	}
}

// Create inserts course and fills in its generated id and timestamps. A
// taken slug yields apperrors.ErrSlugTaken.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()

	query, args, err := r.sb.Insert("courses").
		Columns("title", "slug", "summary", "description", "is_published", "created_at", "updated_at").
		Values(course.Title, course.Slug, course.Summary, course.Description, course.IsPublished, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.db.DB.QueryRowContext(ctx, query, args...).Scan(&course.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_slug_key") {
			return apperrors.ErrSlugTaken
		}
		logger.Error().Err(err).Str("slug", course.Slug).Msg("Error executing create course query")
		return fmt.Errorf("error creating course: %w", err)
	}

	course.CreatedAt = now
	course.UpdatedAt = now
	return nil
}

// GetByID retrieves a course by id, optionally among published courses only
func (r *CourseRepository) GetByID(ctx context.Context, id int64, publishedOnly bool) (*models.Course, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, publishedOnly)
}

// GetBySlug retrieves a course by slug, optionally among published courses only
func (r *CourseRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Course, error) {
	return r.getOne(ctx, squirrel.Eq{"slug": slug}, publishedOnly)
}

// List returns courses ordered by id, optionally published ones only
func (r *CourseRepository) List(ctx context.Context, publishedOnly bool) ([]models.Course, error) {
	builder := r.sb.Select(courseColumns...).From("courses").OrderBy("id")
	if publishedOnly {
		builder = builder.Where(squirrel.Eq{"is_published": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning course row")
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// SlugsWithBase returns base itself and every base-N slug in use.
func (r *CourseRepository) SlugsWithBase(ctx context.Context, base string) ([]string, error) {
	query, args, err := r.sb.Select("slug").
		From("courses").
		Where(squirrel.Or{
			squirrel.Eq{"slug": base},
			squirrel.Like{"slug": base + "-%"},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build slug query: %w", err)
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("slug", base).Msg("Error executing slug query")
		return nil, fmt.Errorf("error reading slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("error scanning slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// Update persists the mutable fields of course and refreshes UpdatedAt.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()

	query, args, err := r.sb.Update("courses").
		Set("title", course.Title).
		Set("summary", course.Summary).
		Set("description", course.Description).
		Set("is_published", course.IsPublished).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update course SQL")
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
		return fmt.Errorf("error updating course: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.ErrCourseNotFound
	}

	course.UpdatedAt = now
	return nil
}

// Delete removes a course and its enrollments in one transaction.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	deleteEnrollments, enrollmentArgs, err := r.sb.Delete("course_user").
		Where(squirrel.Eq{"course_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete enrollments query: %w", err)
	}

	deleteCourse, courseArgs, err := r.sb.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteEnrollments, enrollmentArgs...); err != nil {
			logger.Error().Err(err).Int64("courseID", id).Msg("Error deleting course enrollments")
			return fmt.Errorf("error deleting enrollments: %w", err)
		}

		result, err := tx.ExecContext(ctx, deleteCourse, courseArgs...)
		if err != nil {
			logger.Error().Err(err).Int64("courseID", id).Msg("Error deleting course")
			return fmt.Errorf("error deleting course: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return apperrors.ErrCourseNotFound
		}
		return nil
	})
}

func (r *CourseRepository) getOne(ctx context.Context, where squirrel.Eq, publishedOnly bool) (*models.Course, error) {
	builder := r.sb.Select(courseColumns...).From("courses").Where(where).Limit(1)
	if publishedOnly {
		builder = builder.Where(squirrel.Eq{"is_published": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCourseNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error scanning course row")
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID, &course.Title, &course.Slug, &course.Summary, &course.Description,
		&course.IsPublished, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
