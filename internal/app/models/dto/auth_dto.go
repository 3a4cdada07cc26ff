package dto

import "github.com/yigit/admission/internal/app/models"

// RegisterRequest is the self-registration form of a student
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,username"`
	Email           string `json:"email" binding:"required,portalemail"`
	Password        string `json:"password" binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	FirstName       string `json:"firstName" binding:"required,personname"`
	LastName        string `json:"lastName" binding:"required,personname"`
	DateOfBirth     string `json:"dateOfBirth" binding:"required" example:"2006-04-12"`
	Gender          string `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Phone           string `json:"phone" binding:"required,phone"`
	Address         string `json:"address" binding:"required,max=255"`
	City            string `json:"city" binding:"required,max=50"`
	State           string `json:"state" binding:"required,max=50"`
	ZipCode         string `json:"zipCode" binding:"required,zipcode"`
	Country         string `json:"country" binding:"omitempty,max=50"`
	CourseID        int64  `json:"courseId" binding:"required,gt=0"`
	EnrollmentYear  int    `json:"enrollmentYear" binding:"required"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	UserID           int64                    `json:"userId"`
	StudentID        int64                    `json:"studentId"`
	Username         string                   `json:"username"`
	Email            string                   `json:"email"`
	Status           models.ApplicationStatus `json:"status"`
	NotificationSent bool                     `json:"notificationSent"`
}

// LoginRequest represents login credentials. Identifier is a username or an email.
type LoginRequest struct {
	Identifier string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse represents basic credential information
type UserResponse struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     models.RoleType `json:"role"`
	IsActive bool            `json:"isActive"`
}

// NewUserResponse maps a credential to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.RoleType,
		IsActive: u.IsActive,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}
