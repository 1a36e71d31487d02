package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
)

const birthDateLayout = "2006-01-02"

// EmployeeRequest payload for POST and PUT /employees. Password may be blank on PUT.
type EmployeeRequest struct {
	FirstName      string      `json:"firstName" validate:"required,max=80"`
	LastName       string      `json:"lastName" validate:"required,max=80"`
	Email          string      `json:"email" validate:"required,max=200,email"`
	DocumentNumber string      `json:"documentNumber" validate:"required,max=50"`
	BirthDate      string      `json:"birthDate" validate:"required"`
	Password       string      `json:"password" validate:"max=72"`
	Role           domain.Role `json:"role"`
	ManagerID      *string     `json:"managerId" validate:"omitempty,uuid"`
	Phones         []string    `json:"phones" validate:"dive,required,max=30"`
}

// ErrInvalidBirthDate is returned for a birth date in neither accepted layout.
var ErrInvalidBirthDate = errors.New("birthDate must be YYYY-MM-DD or RFC 3339")

// ParseBirthDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the calendar date at
// midnight UTC.
func ParseBirthDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(birthDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidBirthDate
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// EmployeeListQuery captures the query string of GET /employees.
type EmployeeListQuery struct {
	Page     int
	PageSize int
	Search   string
}

// EmployeeSummary is one item of the employee list.
type EmployeeSummary struct {
	ID             string      `json:"id"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Email          string      `json:"email"`
	DocumentNumber string      `json:"documentNumber"`
	BirthDate      string      `json:"birthDate"`
	Role           domain.Role `json:"role"`
	Phones         []string    `json:"phones"`
}

// EmployeeDetailResponse adds the manager reference to the summary.
type EmployeeDetailResponse struct {
	EmployeeSummary
	ManagerID *string `json:"managerId"`
}

// EmployeeListResponse is one page of employees.
type EmployeeListResponse struct {
	Items    []EmployeeSummary `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// CreatedResponse is returned by POST /employees.
type CreatedResponse struct {
	ID string `json:"id"`
}

// NewEmployeeSummary converts a domain employee.
func NewEmployeeSummary(e domain.Employee) EmployeeSummary {
	phones := e.Phones
	if phones == nil {
		phones = []string{}
	}
	return EmployeeSummary{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Email:          e.Email,
		DocumentNumber: e.DocumentNumber,
		BirthDate:      e.BirthDate.Format(birthDateLayout),
		Role:           e.Role,
		Phones:         phones,
	}
}

// NewEmployeeDetail converts a domain employee including its manager.
func NewEmployeeDetail(e *domain.Employee) EmployeeDetailResponse {
	return EmployeeDetailResponse{EmployeeSummary: NewEmployeeSummary(*e), ManagerID: e.ManagerID}
}
