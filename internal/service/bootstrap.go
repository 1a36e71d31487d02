package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anna-paula-dante/employee-registration/internal/auth"
	"github.com/anna-paula-dante/employee-registration/internal/config"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/events"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

// SeedDirector creates the configured Director unless a record already holds its email or
// document number. It is safe to call on every startup and reports whether a record was created.
func (s *EmployeeService) SeedDirector(ctx context.Context, admin config.AdminConfig) (bool, error) {
	email := strings.TrimSpace(admin.Email)
	document := strings.TrimSpace(admin.DocumentNumber)
	if email == "" || document == "" || admin.Password == "" {
		return false, apperrors.NewValidationError("admin email, document and password are required", nil)
	}

	emailTaken, err := s.employees.EmailTaken(ctx, email, "")
	if err != nil {
		return false, err
	}
	documentTaken, err := s.employees.DocumentTaken(ctx, document, "")
	if err != nil {
		return false, err
	}
	if emailTaken || documentTaken {
		s.logger.Info("director already present; skipping seed", zap.String("email", email))
		return false, nil
	}

	hash, err := auth.HashPassword(admin.Password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	director := &domain.Employee{
		ID:             uuid.NewString(),
		FirstName:      strings.TrimSpace(admin.FirstName),
		LastName:       strings.TrimSpace(admin.LastName),
		Email:          email,
		DocumentNumber: document,
		BirthDate:      admin.BirthDate,
		PasswordHash:   hash,
		Role:           domain.RoleDirector,
		Phones:         domain.DistinctPhones(admin.Phones),
	}
	if err := s.employees.Create(ctx, director); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicateDocument) {
			// Another instance seeded first.
			return false, nil
		}
		return false, err
	}

	s.logger.Info("seeded director", zap.String("id", director.ID), zap.String("email", email))
	s.publish(ctx, events.Event{
		Type:       events.EventDirectorSeeded,
		EmployeeID: director.ID,
		Actor:      events.SystemActor,
		Payload: events.EmployeeCreatedPayload{
			Email:  director.Email,
			Role:   director.Role,
			Phones: len(director.Phones),
		},
	})
	return true, nil
}
