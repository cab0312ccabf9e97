package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/learnhub/internal/app/models/dto"
	"github.com/yigit/learnhub/internal/app/services"
	"github.com/yigit/learnhub/internal/middleware"
	"github.com/yigit/learnhub/internal/pkg/apperrors"
	"github.com/yigit/learnhub/internal/pkg/auth"
)

// CourseParam is the path parameter holding a course id or slug
const CourseParam = "course"

// CourseController handles course related operations
type CourseController struct {
	courseService *services.CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		logger:        logger,
	}
}

func identity(ctx *gin.Context) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(ctx.Request.Context())
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenNotFound)
	}
	return id, ok
}

func courseResponse(ctx *gin.Context, status int, message string, course any) {
	ctx.JSON(status, dto.NewSuccessResponse(message, course))
}

// Create handles course creation
// @Summary Create a course
// @Description Creates an unpublished course; the slug is derived from the title
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.SuccessResponse{data=dto.CourseResponse} "Course created"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Router /courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	payload := middleware.ValidatedPayload(ctx)
	course, err := c.courseService.Create(ctx.Request.Context(), dto.CreateCourseRequest{
		Title:       payload.String("title"),
		Summary:     payload.String("summary"),
		Description: payload.String("description"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusCreated, "course created successfully", dto.CourseResponse{Course: course})
}

// List handles course listing
// @Summary List courses
// @Description Admins see every course, students only published ones
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse{data=dto.CourseListResponse} "Courses"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Router /courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	viewer, ok := identity(ctx)
	if !ok {
		return
	}

	courses, err := c.courseService.List(ctx.Request.Context(), viewer)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusOK, "courses fetched successfully", dto.CourseListResponse{Courses: courses})
}

// Show handles fetching one course
// @Summary Get a course
// @Description Resolves the course by numeric id or slug
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Success 200 {object} dto.SuccessResponse{data=dto.CourseResponse} "Course"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{course} [get]
func (c *CourseController) Show(ctx *gin.Context) {
	viewer, ok := identity(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.Get(ctx.Request.Context(), viewer, ctx.Param(CourseParam))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusOK, "course found", dto.CourseResponse{Course: course})
}

// Update handles partial course updates
// @Summary Update a course
// @Description Updates the supplied fields; the slug never changes
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.SuccessResponse{data=dto.CourseResponse} "Course updated"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Router /courses/{course} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	payload := middleware.ValidatedPayload(ctx)
	course, err := c.courseService.Update(ctx.Request.Context(), ctx.Param(CourseParam), dto.UpdateCourseRequest{
		Title:       payload.StringPtr("title"),
		Summary:     payload.StringPtr("summary"),
		Description: payload.StringPtr("description"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusOK, "course updated successfully", dto.CourseResponse{Course: course})
}

// Delete handles course removal
// @Summary Delete a course
// @Description Removes the course and its enrollments
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Success 200 {object} dto.SuccessResponse "Course deleted"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{course} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	if err := c.courseService.Delete(ctx.Request.Context(), ctx.Param(CourseParam)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusOK, "course deleted successfully", nil)
}

// Publish handles course publication
// @Summary Publish a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Success 200 {object} dto.SuccessResponse{data=dto.CourseResponse} "Course published"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{course}/publish [post]
func (c *CourseController) Publish(ctx *gin.Context) {
	course, err := c.courseService.Publish(ctx.Request.Context(), ctx.Param(CourseParam))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusOK, "course published successfully", dto.CourseResponse{Course: course})
}

// Unpublish handles hiding a course
// @Summary Unpublish a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Success 200 {object} dto.SuccessResponse{data=dto.CourseResponse} "Course unpublished"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{course}/unpublish [post]
func (c *CourseController) Unpublish(ctx *gin.Context) {
	course, err := c.courseService.Unpublish(ctx.Request.Context(), ctx.Param(CourseParam))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	courseResponse(ctx, http.StatusOK, "course unpublished successfully", dto.CourseResponse{Course: course})
}

// Enroll handles student enrollment
// @Summary Enroll in a course
// @Description Enrolls the calling student in a published course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Success 200 {object} dto.SuccessResponse "Student enrolled"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated or already enrolled"
// @Failure 403 {object} dto.ErrorResponse "Not a student"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{course}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	student, ok := identity(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.Enroll(ctx.Request.Context(), student, ctx.Param(CourseParam))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("user_id", student.UserID).Int64("course_id", course.ID).Msg("Student enrolled")
	courseResponse(ctx, http.StatusOK, "student enrolled successfully", nil)
}

// Unenroll handles leaving a course
// @Summary Unenroll from a course
// @Description Removes the calling student's enrollment from a published course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param course path string true "Course id or slug"
// @Success 200 {object} dto.SuccessResponse "Student unenrolled"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated or not enrolled"
// @Failure 403 {object} dto.ErrorResponse "Not a student"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{course}/unenroll [post]
func (c *CourseController) Unenroll(ctx *gin.Context) {
	student, ok := identity(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.Unenroll(ctx.Request.Context(), student, ctx.Param(CourseParam))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("user_id", student.UserID).Int64("course_id", course.ID).Msg("Student unenrolled")
	courseResponse(ctx, http.StatusOK, "student unenrolled successfully", nil)
}

// Health reports that the API is up
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.SuccessResponse{data=dto.HealthResponse} "Service healthy"
// @Router /health [get]
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("ok", dto.HealthResponse{Status: "ok"}))
}
