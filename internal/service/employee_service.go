package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anna-paula-dante/employee-registration/internal/auth"
	"github.com/anna-paula-dante/employee-registration/internal/config"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/events"
	"github.com/anna-paula-dante/employee-registration/internal/repository"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// EmployeeService applies the roster rules to create, update, delete and read employees.
type EmployeeService struct {
	employees  repository.EmployeeRepository
	validator  *EmployeeValidator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// EmployeeDependencies encapsulates collaborators required by the employee service.
type EmployeeDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	// Clock overrides time.Now for the age rule.
	Clock func() time.Time
}

// NewEmployeeService constructs the service.
func NewEmployeeService(cfg config.Config, deps EmployeeDependencies) *EmployeeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		employees:  deps.EmployeeRepo,
		validator:  NewEmployeeValidator(deps.EmployeeRepo, deps.Clock),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// ListParams are the paging and search inputs of List.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

// EmployeePage is one page of List results.
type EmployeePage struct {
	Items    []domain.Employee
	Total    int
	Page     int
	PageSize int
}

// Create admits a new employee when the actor may assign the requested role and every rule passes.
func (s *EmployeeService) Create(ctx context.Context, actor domain.SessionClaims, in EmployeeInput) (*domain.Employee, error) {
	in = in.Normalize()
	if err := s.validator.CheckFields(in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
	}
	if !domain.CanActOn(actor.Role, in.Role) {
		return nil, apperrors.NewForbidden("cannot assign a role above your own")
	}
	if err := s.validator.CheckRelations(ctx, in, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	employee := &domain.Employee{
		ID:             uuid.NewString(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		DocumentNumber: in.DocumentNumber,
		BirthDate:      in.BirthDate,
		PasswordHash:   hash,
		Role:           in.Role,
		ManagerID:      in.ManagerID,
		Phones:         in.Phones,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventEmployeeCreated,
		EmployeeID: employee.ID,
		Actor:      actorOf(actor),
		Payload: events.EmployeeCreatedPayload{
			Email:     employee.Email,
			Role:      employee.Role,
			ManagerID: employee.ManagerID,
			Phones:    len(employee.Phones),
		},
	})
	return employee, nil
}

// Update replaces the employee's fields and phone set in one atomic write.
func (s *EmployeeService) Update(ctx context.Context, actor domain.SessionClaims, id string, in EmployeeInput) (*domain.Employee, error) {
	existing, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	in = in.Normalize()
	if err := s.validator.CheckFields(in); err != nil {
		return nil, err
	}
	if !domain.CanActOn(actor.Role, in.Role) {
		return nil, apperrors.NewForbidden("cannot assign a role above your own")
	}
	if err := s.validator.CheckRelations(ctx, in, id); err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.Email = in.Email
	updated.DocumentNumber = in.DocumentNumber
	updated.BirthDate = in.BirthDate
	updated.Role = in.Role
	updated.ManagerID = in.ManagerID
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		updated.PasswordHash = hash
	}

	diff := domain.ReconcilePhones(existing.Phones, in.Phones)
	if err := s.employees.Update(ctx, updated, diff); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventEmployeeUpdated,
		EmployeeID: id,
		Actor:      actorOf(actor),
		Payload: events.EmployeeUpdatedPayload{
			OldRole:         existing.Role,
			NewRole:         updated.Role,
			PasswordRotated: in.Password != "",
			PhonesAdded:     diff.ToAdd,
			PhonesRemoved:   diff.ToRemove,
		},
	})
	return updated, nil
}

// Delete removes the employee when the actor ranks at or above the record's current role.
func (s *EmployeeService) Delete(ctx context.Context, actor domain.SessionClaims, id string) error {
	existing, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !domain.CanActOn(actor.Role, existing.Role) {
		return apperrors.NewForbidden("cannot delete an employee with a higher role")
	}
	if err := s.employees.Delete(ctx, id, existing.Version); err != nil {
		return mapRepositoryError(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventEmployeeDeleted,
		EmployeeID: id,
		Actor:      actorOf(actor),
		Payload:    events.EmployeeDeletedPayload{Email: existing.Email, Role: existing.Role},
	})
	return nil
}

// Get returns one employee with phones.
func (s *EmployeeService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return employee, nil
}

// List returns one page of employees ordered by first then last name.
func (s *EmployeeService) List(ctx context.Context, params ListParams) (EmployeePage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = DefaultPageSize
	}
	if params.PageSize > MaxPageSize {
		params.PageSize = MaxPageSize
	}

	items, total, err := s.employees.List(ctx, repository.EmployeeFilter{
		Search: params.Search,
		Limit:  params.PageSize,
		Offset: (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return EmployeePage{}, apperrors.NewInternalError(err)
	}
	if items == nil {
		items = []domain.Employee{}
	}
	return EmployeePage{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

func (s *EmployeeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func actorOf(claims domain.SessionClaims) events.Actor {
	return events.Actor{ID: claims.SubjectID, Role: claims.Role}
}

// mapRepositoryError translates storage outcomes, including races the pre-flight checks could
// not see, into the error taxonomy.
func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	case errors.Is(err, domain.ErrDuplicateDocument):
		return apperrors.NewConflict("document already registered", map[string]any{"field": "documentNumber"})
	case errors.Is(err, domain.ErrManagerNotFound):
		return apperrors.NewValidationError("manager not found", map[string]any{"field": "managerId"})
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return apperrors.NewNotFound("employee", nil)
	case errors.Is(err, domain.ErrEmployeeStale):
		return apperrors.NewStale("employee", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
