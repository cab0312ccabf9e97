// Package controllers handles HTTP request handling
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
	"github.com/yigit/learnhub/internal/pkg/validation"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func registerRequest(payload validation.Payload) dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:     payload.String("name"),
		Email:    payload.String("email"),
		Password: payload.String("password"),
	}
}

// CreateAdmin handles admin creation
// @Summary Create an admin
// @Description Creates an admin account and returns an access token. Intended for bootstrapping.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Admin information"
// @Success 201 {object} dto.SuccessResponse{data=dto.AdminAuthResponse} "Admin created"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/create-admin [post]
func (c *AuthController) CreateAdmin(ctx *gin.Context) {
	resp, err := c.authService.CreateAdmin(ctx.Request.Context(), registerRequest(middleware.ValidatedPayload(ctx)))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to create admin")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("admin created successfully", resp))
}

// Register handles student registration
// @Summary Register a student
// @Description Creates a student account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration information"
// @Success 201 {object} dto.SuccessResponse{data=dto.AuthResponse} "User registered"
// @Failure 422 {object} dto.ErrorResponse "Validation error, including a taken email"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	resp, err := c.authService.Register(ctx.Request.Context(), registerRequest(middleware.ValidatedPayload(ctx)))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to register user")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("user created successfully", resp))
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.SuccessResponse{data=dto.AuthResponse} "Login successful"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 422 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	payload := middleware.ValidatedPayload(ctx)
	resp, err := c.authService.Login(ctx.Request.Context(), dto.LoginRequest{
		Email:    payload.String("email"),
		Password: payload.String("password"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("user login successfully", resp))
}

// Logout handles user logout
// @Summary User logout
// @Description Revokes the access token used for this request
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Missing, invalid or expired token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	identity, ok := auth.IdentityFromContext(ctx.Request.Context())
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenNotFound)
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), identity); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("successfully logged out", nil))
}
