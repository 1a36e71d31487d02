package service

import (
	"context"
	"strings"
	"time"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/repository"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

const (
	MinimumAge    = 18
	MinimumPhones = 2
)

// EmployeeInput carries the writable fields of an employee record.
type EmployeeInput struct {
	FirstName      string
	LastName       string
	Email          string
	DocumentNumber string
	BirthDate      time.Time
	// Password is required on create; on update an empty value keeps the current secret.
	Password  string
	Role      domain.Role
	ManagerID *string
	Phones    []string
}

// Normalize trims text fields, drops repeated phones and defaults the role to Employee.
func (in EmployeeInput) Normalize() EmployeeInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	if in.Role == "" {
		in.Role = domain.RoleEmployee
	}
	if in.ManagerID != nil {
		id := strings.TrimSpace(*in.ManagerID)
		if id == "" {
			in.ManagerID = nil
		} else {
			in.ManagerID = &id
		}
	}
	phones := make([]string, 0, len(in.Phones))
	for _, p := range in.Phones {
		if p = strings.TrimSpace(p); p != "" {
			phones = append(phones, p)
		}
	}
	in.Phones = domain.DistinctPhones(phones)
	return in
}

// EmployeeValidator enforces the field and relational rules of a roster write.
// Checks run in a fixed order: age, phone count, email, document, manager.
type EmployeeValidator struct {
	employees repository.EmployeeRepository
	now       func() time.Time
}

// NewEmployeeValidator builds a validator. A nil clock means time.Now.
func NewEmployeeValidator(employees repository.EmployeeRepository, now func() time.Time) *EmployeeValidator {
	if now == nil {
		now = time.Now
	}
	return &EmployeeValidator{employees: employees, now: now}
}

// Validate runs CheckFields then CheckRelations.
func (v *EmployeeValidator) Validate(ctx context.Context, in EmployeeInput, excludeID string) error {
	if err := v.CheckFields(in); err != nil {
		return err
	}
	return v.CheckRelations(ctx, in, excludeID)
}

// AgeCutoff is the latest birth date that passes the age rule.
func (v *EmployeeValidator) AgeCutoff() time.Time {
	return v.now().UTC().AddDate(-MinimumAge, 0, 0)
}

// CheckFields validates rules that need nothing but the input.
func (v *EmployeeValidator) CheckFields(in EmployeeInput) error {
	if in.BirthDate.IsZero() || in.BirthDate.After(v.AgeCutoff()) {
		return apperrors.NewValidationError("must be 18+", map[string]any{"field": "birthDate"})
	}
	if len(domain.DistinctPhones(in.Phones)) < MinimumPhones {
		return apperrors.NewValidationError("at least two phones required", map[string]any{"field": "phones"})
	}
	if !in.Role.Valid() {
		return apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
	}
	return nil
}

// CheckRelations validates rules that depend on the current roster. excludeID is the id of the
// record being updated, or empty on create.
func (v *EmployeeValidator) CheckRelations(ctx context.Context, in EmployeeInput, excludeID string) error {
	taken, err := v.employees.EmailTaken(ctx, in.Email, excludeID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if taken {
		return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	}

	taken, err = v.employees.DocumentTaken(ctx, in.DocumentNumber, excludeID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if taken {
		return apperrors.NewConflict("document already registered", map[string]any{"field": "documentNumber"})
	}

	if in.ManagerID != nil {
		exists, err := v.employees.Exists(ctx, *in.ManagerID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if !exists {
			return apperrors.NewValidationError("manager not found", map[string]any{"field": "managerId"})
		}
	}
	return nil
}
