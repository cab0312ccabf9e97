package dto

import "github.com/yigit/learnhub/internal/app/models"

// RegisterRequest holds the validated input of registration and admin creation
type RegisterRequest struct {
	Name     string `json:"name" example:"Jane"`
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"Str0ng!Pass"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"Str0ng!Pass"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"3600"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID    int64  `json:"id" example:"1"`
	Name  string `json:"name" example:"Jane"`
	Email string `json:"email" example:"jane@example.com"`
}

// AdminResponse is UserResponse plus the role
type AdminResponse struct {
	UserResponse
	Role models.RoleType `json:"role" example:"admin"`
}

// AuthResponse is returned by registration and login
type AuthResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

// AdminAuthResponse is returned by admin creation
type AdminAuthResponse struct {
	TokenResponse
	Admin AdminResponse `json:"admin"`
}

// NewUserResponse maps a user onto its public representation
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// NewAdminResponse maps an admin onto its public representation
func NewAdminResponse(user *models.User) AdminResponse {
	return AdminResponse{
		UserResponse: NewUserResponse(user),
		Role:         user.RoleType,
	}
}
