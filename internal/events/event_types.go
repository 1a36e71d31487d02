package events

import (
	"time"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEmployeeCreated EventType = "employee_created"
	EventEmployeeUpdated EventType = "employee_updated"
	EventEmployeeDeleted EventType = "employee_deleted"
	EventDirectorSeeded  EventType = "director_seeded"
)

// Actor identifies who performed the write.
type Actor struct {
	ID   string      `json:"id,omitempty"`
	Role domain.Role `json:"role,omitempty"`
}

// SystemActor marks writes performed by the process itself.
var SystemActor = Actor{ID: "system"}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	EmployeeID string      `json:"employee_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// EmployeeCreatedPayload payload.
type EmployeeCreatedPayload struct {
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	ManagerID *string     `json:"manager_id,omitempty"`
	Phones    int         `json:"phones"`
}

// EmployeeUpdatedPayload payload.
type EmployeeUpdatedPayload struct {
	OldRole         domain.Role `json:"old_role"`
	NewRole         domain.Role `json:"new_role"`
	PasswordRotated bool        `json:"password_rotated"`
	PhonesAdded     []string    `json:"phones_added,omitempty"`
	PhonesRemoved   []string    `json:"phones_removed,omitempty"`
}

// EmployeeDeletedPayload payload.
type EmployeeDeletedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
