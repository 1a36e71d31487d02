package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
)

// memoryEmployeeRepository keeps the roster in process memory. Every write runs under one lock,
// so uniqueness and version checks are atomic with the write itself.
type memoryEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*domain.Employee
	now       func() time.Time
}

// NewMemoryEmployeeRepository builds an empty in-memory repository.
func NewMemoryEmployeeRepository() EmployeeRepository {
	return &memoryEmployeeRepository{
		employees: make(map[string]*domain.Employee),
		now:       time.Now,
	}
}

func (r *memoryEmployeeRepository) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkWrite(employee); err != nil {
		return err
	}
	now := r.now().UTC()
	employee.Version = 1
	employee.CreatedAt = now
	employee.UpdatedAt = now
	employee.Phones = domain.DistinctPhones(employee.Phones)
	r.employees[employee.ID] = employee.Clone()
	return nil
}

func (r *memoryEmployeeRepository) Update(_ context.Context, employee *domain.Employee, phones domain.PhoneDiff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.employees[employee.ID]
	if !ok || stored.Version != employee.Version {
		return domain.ErrEmployeeStale
	}
	if err := r.checkWrite(employee); err != nil {
		return err
	}

	updated := employee.Clone()
	updated.Phones = phones.Apply(stored.Phones)
	updated.Version = stored.Version + 1
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.now().UTC()
	r.employees[employee.ID] = updated

	employee.Version = updated.Version
	employee.UpdatedAt = updated.UpdatedAt
	employee.Phones = append([]string(nil), updated.Phones...)
	return nil
}

func (r *memoryEmployeeRepository) Delete(_ context.Context, id string, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.employees[id]
	if !ok || stored.Version != version {
		return domain.ErrEmployeeStale
	}
	delete(r.employees, id)
	for _, other := range r.employees {
		if other.ManagerID != nil && *other.ManagerID == id {
			other.ManagerID = nil
		}
	}
	return nil
}

func (r *memoryEmployeeRepository) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return stored.Clone(), nil
}

func (r *memoryEmployeeRepository) GetByLogin(_ context.Context, identifier string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var byDocument *domain.Employee
	for _, stored := range r.employees {
		if strings.EqualFold(stored.Email, identifier) {
			return stored.Clone(), nil
		}
		if stored.DocumentNumber == identifier {
			byDocument = stored
		}
	}
	if byDocument == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return byDocument.Clone(), nil
}

func (r *memoryEmployeeRepository) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTaken(email, excludeID), nil
}

func (r *memoryEmployeeRepository) DocumentTaken(_ context.Context, document, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.documentTaken(document, excludeID), nil
}

func (r *memoryEmployeeRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.employees[id]
	return ok, nil
}

func (r *memoryEmployeeRepository) List(_ context.Context, filter EmployeeFilter) ([]domain.Employee, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]domain.Employee, 0, len(r.employees))
	for _, stored := range r.employees {
		if search == "" || matchesSearch(stored, search) {
			matched = append(matched, *stored.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if af, bf := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName); af != bf {
			return af < bf
		}
		if al, bl := strings.ToLower(a.LastName), strings.ToLower(b.LastName); al != bl {
			return al < bl
		}
		return a.ID < b.ID
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Employee{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// checkWrite mirrors the storage constraints. Callers must hold the write lock.
func (r *memoryEmployeeRepository) checkWrite(employee *domain.Employee) error {
	if r.emailTaken(employee.Email, employee.ID) {
		return domain.ErrDuplicateEmail
	}
	if r.documentTaken(employee.DocumentNumber, employee.ID) {
		return domain.ErrDuplicateDocument
	}
	if employee.ManagerID != nil {
		if _, ok := r.employees[*employee.ManagerID]; !ok {
			return domain.ErrManagerNotFound
		}
	}
	return nil
}

func (r *memoryEmployeeRepository) emailTaken(email, excludeID string) bool {
	for id, stored := range r.employees {
		if id != excludeID && strings.EqualFold(stored.Email, email) {
			return true
		}
	}
	return false
}

func (r *memoryEmployeeRepository) documentTaken(document, excludeID string) bool {
	for id, stored := range r.employees {
		if id != excludeID && stored.DocumentNumber == document {
			return true
		}
	}
	return false
}

func matchesSearch(employee *domain.Employee, search string) bool {
	for _, field := range []string{employee.FirstName, employee.LastName, employee.Email, employee.DocumentNumber} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
