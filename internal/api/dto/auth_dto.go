package dto

import (
	"time"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	EmailOrDocument string `json:"emailOrDocument"`
	Password        string `json:"password"`
}

// LoginResponse is the bearer token plus a summary of the signed-in employee.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        LoginUser `json:"user"`
}

// LoginUser summarizes the signed-in employee.
type LoginUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ClaimsResponse mirrors the verified claim set of the presenting token.
type ClaimsResponse struct {
	Subject   string      `json:"sub"`
	Email     string      `json:"email"`
	Document  string      `json:"document"`
	Role      domain.Role `json:"role"`
	TokenID   string      `json:"jti"`
	IssuedAt  int64       `json:"iat"`
	ExpiresAt int64       `json:"exp"`
}

// NewLoginResponse builds the login body.
func NewLoginResponse(token string, expiresAt time.Time, employee *domain.Employee) LoginResponse {
	return LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
		User: LoginUser{
			ID:    employee.ID,
			Name:  employee.FullName(),
			Email: employee.Email,
			Role:  employee.Role,
		},
	}
}

// NewClaimsResponse converts a claim set.
func NewClaimsResponse(claims domain.SessionClaims) ClaimsResponse {
	return ClaimsResponse{
		Subject:   claims.SubjectID,
		Email:     claims.Email,
		Document:  claims.DocumentNumber,
		Role:      claims.Role,
		TokenID:   claims.TokenID,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
}
