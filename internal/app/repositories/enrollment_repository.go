package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/learnhub/internal/db"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/dberrors"
	"github.com/yigit/learnhub/internal/pkg/logger"
)

// EnrollmentRepository handles the course_user pivot table
type EnrollmentRepository struct {
	db *db.Database
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(database *db.Database) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: database,
		sb: database.Builder(),
	}
}

// Enroll links user to course. The primary key makes the check and the
// insert one atomic step; a second enrollment yields
// apperrors.ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Enroll(ctx context.Context, userID, courseID int64) error {
	query, args, err := r.sb.Insert("course_user").
		Columns("user_id", "course_id", "created_at").
		Values(userID, courseID, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enroll query: %w", err)
	}

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "course_user_pkey") {
			return apperrors.ErrAlreadyEnrolled
		}
		logger.Error().Err(err).Int64("userID", userID).Int64("courseID", courseID).Msg("Error executing enroll query")
		return fmt.Errorf("error enrolling user: %w", err)
	}
	return nil
}

// Unenroll removes the link between user and course. A missing link yields
// apperrors.ErrNotEnrolled.
func (r *EnrollmentRepository) Unenroll(ctx context.Context, userID, courseID int64) error {
	query, args, err := r.sb.Delete("course_user").
		Where(squirrel.Eq{"user_id": userID, "course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unenroll query: %w", err)
	}

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("courseID", courseID).Msg("Error executing unenroll query")
		return fmt.Errorf("error unenrolling user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading unenroll result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotEnrolled
	}
	return nil
}
