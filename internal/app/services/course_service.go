package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/learnhub/internal/app/models"
	"github.com/yigit/learnhub/internal/app/models/dto"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/auth"
	"github.com/yigit/learnhub/internal/pkg/events"
	"github.com/yigit/learnhub/internal/pkg/helpers"
	"github.com/yigit/learnhub/internal/pkg/metrics"
)

// maxSlugAttempts bounds the retries when concurrent creates race for a slug
const maxSlugAttempts = 5

// CourseService handles the course catalogue and enrollments
type CourseService struct {
	courses     CourseStore
	enrollments EnrollmentStore
	events      events.Emitter
	logger      zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(courses CourseStore, enrollments EnrollmentStore, emitter events.Emitter, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		events:      emitter,
		logger:      logger,
	}
}

// enrollmentEvent is the payload of enroll and unenroll events
type enrollmentEvent struct {
	UserID   int64  `json:"user_id"`
	CourseID int64  `json:"course_id"`
	Slug     string `json:"slug"`
}

// Create stores a new unpublished course under a unique slug derived from
// its title.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	base := helpers.Slugify(req.Title)

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		taken, err := s.courses.SlugsWithBase(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug availability: %w", err)
		}

		course := &models.Course{
			Title:       req.Title,
			Slug:        helpers.NextSlug(base, taken),
			Summary:     req.Summary,
			Description: req.Description,
		}
		err = s.courses.Create(ctx, course)
		if err == nil {
			s.events.Emit(ctx, events.CourseCreated, course)
			s.logger.Info().Int64("course_id", course.ID).Str("slug", course.Slug).Msg("Course created")
			return course, nil
		}
		if !errors.Is(err, apperrors.ErrSlugTaken) {
			return nil, err
		}
		s.logger.Debug().Str("slug", course.Slug).Int("attempt", attempt).Msg("Slug taken concurrently, retrying")
	}

	return nil, fmt.Errorf("failed to allocate a slug for %q after %d attempts: %w", base, maxSlugAttempts, apperrors.ErrSlugTaken)
}

// List returns every course to admins and only published ones to everybody
// else, ordered by id.
func (s *CourseService) List(ctx context.Context, viewer *auth.Identity) ([]models.Course, error) {
	return s.courses.List(ctx, !viewer.IsAdmin())
}

// Get resolves one course by id or slug as seen by viewer
func (s *CourseService) Get(ctx context.Context, viewer *auth.Identity, key string) (*models.Course, error) {
	return s.resolve(ctx, models.CourseLookup{Key: key, PublishedOnly: !viewer.IsAdmin()})
}

// Update applies the supplied fields to the course. The slug is kept.
func (s *CourseService) Update(ctx context.Context, key string, req dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.resolve(ctx, models.CourseLookup{Key: key})
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return course, nil
	}

	if req.Title != nil && *req.Title != "" {
		course.Title = *req.Title
	}
	if req.Summary != nil && *req.Summary != "" {
		course.Summary = *req.Summary
	}
	if req.Description != nil && *req.Description != "" {
		course.Description = *req.Description
	}

	if err := s.save(ctx, key, course); err != nil {
		return nil, err
	}
	s.events.Emit(ctx, events.CourseUpdated, course)
	return course, nil
}

// Publish makes the course visible to students
func (s *CourseService) Publish(ctx context.Context, key string) (*models.Course, error) {
	return s.setPublished(ctx, key, true)
}

// Unpublish hides the course from students
func (s *CourseService) Unpublish(ctx context.Context, key string) (*models.Course, error) {
	return s.setPublished(ctx, key, false)
}

// Delete removes the course together with its enrollments
func (s *CourseService) Delete(ctx context.Context, key string) error {
	course, err := s.resolve(ctx, models.CourseLookup{Key: key})
	if err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, course.ID); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return apperrors.NewCourseNotFoundError(key)
		}
		return err
	}

	s.events.Emit(ctx, events.CourseDeleted, course)
	s.logger.Info().Int64("course_id", course.ID).Msg("Course deleted")
	return nil
}

// Enroll adds student to a published course
func (s *CourseService) Enroll(ctx context.Context, student *auth.Identity, key string) (*models.Course, error) {
	course, err := s.resolve(ctx, models.CourseLookup{Key: key, PublishedOnly: true})
	if err != nil {
		return nil, err
	}

	if err := s.enrollments.Enroll(ctx, student.UserID, course.ID); err != nil {
		return nil, err
	}
	metrics.RecordEnrollment("enroll")

	s.events.Emit(ctx, events.CourseEnrolled, enrollmentEvent{UserID: student.UserID, CourseID: course.ID, Slug: course.Slug})
	return course, nil
}

// Unenroll removes student from a published course
func (s *CourseService) Unenroll(ctx context.Context, student *auth.Identity, key string) (*models.Course, error) {
	course, err := s.resolve(ctx, models.CourseLookup{Key: key, PublishedOnly: true})
	if err != nil {
		return nil, err
	}

	if err := s.enrollments.Unenroll(ctx, student.UserID, course.ID); err != nil {
		return nil, err
	}
	metrics.RecordEnrollment("unenroll")

	s.events.Emit(ctx, events.CourseUnenrolled, enrollmentEvent{UserID: student.UserID, CourseID: course.ID, Slug: course.Slug})
	return course, nil
}

func (s *CourseService) setPublished(ctx context.Context, key string, published bool) (*models.Course, error) {
	course, err := s.resolve(ctx, models.CourseLookup{Key: key})
	if err != nil {
		return nil, err
	}

	course.IsPublished = published
	if err := s.save(ctx, key, course); err != nil {
		return nil, err
	}

	eventType := events.CourseUnpublished
	if published {
		eventType = events.CoursePublished
	}
	s.events.Emit(ctx, eventType, course)
	return course, nil
}

func (s *CourseService) save(ctx context.Context, key string, course *models.Course) error {
	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return apperrors.NewCourseNotFoundError(key)
		}
		return err
	}
	return nil
}

// resolve finds a course by numeric id first, then by slug. Every course
// handler goes through here.
func (s *CourseService) resolve(ctx context.Context, lookup models.CourseLookup) (*models.Course, error) {
	if id, ok := helpers.ParseID(lookup.Key); ok {
		course, err := s.courses.GetByID(ctx, id, lookup.PublishedOnly)
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, err
		}
	}

	course, err := s.courses.GetBySlug(ctx, lookup.Key, lookup.PublishedOnly)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, apperrors.NewCourseNotFoundError(lookup.Key)
		}
		return nil, err
	}
	return course, nil
}
