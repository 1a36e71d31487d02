package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmployeeStale     = errors.New("employee changed since it was read")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateDocument = errors.New("document already registered")
	ErrManagerNotFound   = errors.New("manager not found")
)

// Employee is both the roster record and the login identity.
type Employee struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	DocumentNumber string
	BirthDate      time.Time
	PasswordHash   string
	Role           Role
	ManagerID      *string
	Phones         []string
	// Version increments on every committed write and backs optimistic concurrency.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Clone returns a deep copy.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	cp := *e
	if e.ManagerID != nil {
		id := *e.ManagerID
		cp.ManagerID = &id
	}
	cp.Phones = append([]string(nil), e.Phones...)
	return &cp
}
