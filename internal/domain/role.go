package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Role enumerates the roster hierarchy levels.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleLeader   Role = "Leader"
	RoleDirector Role = "Director"
)

// ErrInvalidRole is returned when a role name or ordinal is not recognized.
var ErrInvalidRole = errors.New("invalid role")

// Roles lists every role from lowest to highest.
func Roles() []Role {
	return []Role{RoleEmployee, RoleLeader, RoleDirector}
}

// Rank places the role on the hierarchy. Unknown roles rank below everything.
func (r Role) Rank() int {
	switch r {
	case RoleEmployee:
		return 0
	case RoleLeader:
		return 1
	case RoleDirector:
		return 2
	default:
		return -1
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// Compare returns -1, 0 or 1 when r is below, equal to or above other.
func (r Role) Compare(other Role) int {
	switch a, b := r.Rank(), other.Rank(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (r Role) String() string {
	return string(r)
}

// CanActOn reports whether an identity holding acting may assign, modify or delete a record
// holding target. Unknown roles never pass.
func CanActOn(acting, target Role) bool {
	if !acting.Valid() || !target.Valid() {
		return false
	}
	return acting.Compare(target) >= 0
}

// ParseRole accepts a role name (case-insensitive) or its ordinal.
func ParseRole(value string) (Role, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return roleFromOrdinal(n)
	}
	for _, role := range Roles() {
		if strings.EqualFold(value, string(role)) {
			return role, nil
		}
	}
	return "", ErrInvalidRole
}

func roleFromOrdinal(n int) (Role, error) {
	roles := Roles()
	if n < 0 || n >= len(roles) {
		return "", ErrInvalidRole
	}
	return roles[n], nil
}

// UnmarshalJSON accepts "Leader", "leader" or 1. A null or blank string leaves the role empty.
func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	if strings.TrimSpace(raw) == "" {
		*r = ""
		return nil
	}
	role, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = role
	return nil
}
