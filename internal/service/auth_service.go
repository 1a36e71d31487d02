package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/anna-paula-dante/employee-registration/internal/auth"
	"github.com/anna-paula-dante/employee-registration/internal/config"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/repository"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

const invalidCredentials = "invalid credentials"

// AuthService verifies credentials and issues session tokens.
type AuthService struct {
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	TokenManager *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth)
	}
	return &AuthService{
		employees:  deps.EmployeeRepo,
		tokenMgr:   tokens,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// LoginResult is a verified identity plus its bearer token.
type LoginResult struct {
	Employee  *domain.Employee
	Token     string
	ExpiresAt time.Time
	Claims    domain.SessionClaims
}

// Login verifies the identifier and password and issues a token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewBadRequest("email/document and password are required")
	}

	employee, err := s.Verify(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokenMgr.GenerateToken(employee)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Employee: employee, Token: token, ExpiresAt: claims.ExpiresAt, Claims: claims}, nil
}

// Verify matches identifier against email or document number and checks the password. Unknown
// identifiers and wrong passwords fail identically, and both paths run one bcrypt comparison.
func (s *AuthService) Verify(ctx context.Context, identifier, password string) (*domain.Employee, error) {
	employee, err := s.employees.GetByLogin(ctx, identifier)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		_ = auth.ComparePassword(s.placeholderHash(), password)
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	return employee, nil
}

// placeholderHash is compared against when no record matches, so the miss costs the same as a hit.
func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("placeholder-password-never-matches", s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
