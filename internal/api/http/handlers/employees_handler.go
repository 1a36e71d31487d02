package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/anna-paula-dante/employee-registration/internal/api/dto"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/service"
	apperrors "github.com/anna-paula-dante/employee-registration/pkg/util/errorutil"
)

// EmployeesHandler exposes the employee roster.
type EmployeesHandler struct {
	employees *service.EmployeeService
	validate  *validator.Validate
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employeeService *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employeeService, validate: newValidator()}
}

// List handles GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	query := dto.EmployeeListQuery{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "pageSize", service.DefaultPageSize),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	page, err := h.employees.List(c.UserContext(), service.ListParams{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
	})
	if err != nil {
		return err
	}

	items := make([]dto.EmployeeSummary, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, dto.NewEmployeeSummary(e))
	}
	return c.JSON(dto.EmployeeListResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

// Get handles GET /employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := employeeID(c)
	if err != nil {
		return err
	}
	employee, err := h.employees.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEmployeeDetail(employee))
}

// Create handles POST /employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}

	employee, err := h.employees.Create(c.UserContext(), actor, in)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderLocation, strings.TrimSuffix(c.Path(), "/")+"/"+employee.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedResponse{ID: employee.ID})
}

// Update handles PUT /employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	id, err := employeeID(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}

	if _, err := h.employees.Update(c.UserContext(), actor, id, in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete handles DELETE /employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	id, err := employeeID(c)
	if err != nil {
		return err
	}
	if err := h.employees.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// bind decodes and shape-checks the request body. Business rules run in the service.
func (h *EmployeesHandler) bind(c *fiber.Ctx) (service.EmployeeInput, error) {
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		if errors.Is(err, domain.ErrInvalidRole) {
			return service.EmployeeInput{}, apperrors.NewValidationError("invalid role", map[string]any{"field": "role"})
		}
		return service.EmployeeInput{}, apperrors.NewBadRequest("invalid payload")
	}
	if req.ManagerID != nil && strings.TrimSpace(*req.ManagerID) == "" {
		req.ManagerID = nil
	}
	if err := h.validate.Struct(req); err != nil {
		return service.EmployeeInput{}, validationFailure(err)
	}
	birthDate, err := dto.ParseBirthDate(req.BirthDate)
	if err != nil {
		return service.EmployeeInput{}, apperrors.NewValidationError(err.Error(), map[string]any{"field": "birthDate"})
	}

	return service.EmployeeInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		DocumentNumber: req.DocumentNumber,
		BirthDate:      birthDate,
		Password:       req.Password,
		Role:           req.Role,
		ManagerID:      req.ManagerID,
		Phones:         req.Phones,
	}, nil
}

// employeeID rejects ids that cannot name a record, so storage never sees them.
func employeeID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound("employee", nil)
	}
	return id, nil
}
