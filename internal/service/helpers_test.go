package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/anna-paula-dante/employee-registration/internal/config"
	"github.com/anna-paula-dante/employee-registration/internal/domain"
	"github.com/anna-paula-dante/employee-registration/internal/events"
	"github.com/anna-paula-dante/employee-registration/internal/repository"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			Issuer:                "people-manager",
			Audience:              "people-manager-clients",
			AccessTokenTTLMinutes: 120,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

type recordingDispatcher struct {
	events.Dispatcher
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

func newTestEmployeeService(t *testing.T, repo repository.EmployeeRepository) (*EmployeeService, *recordingDispatcher) {
	t.Helper()
	if repo == nil {
		repo = repository.NewMemoryEmployeeRepository()
	}
	dispatcher := newRecordingDispatcher()
	svc := NewEmployeeService(testConfig(), EmployeeDependencies{
		EmployeeRepo: repo,
		Dispatcher:   dispatcher,
		Clock:        testClock,
	})
	return svc, dispatcher
}

func actorWith(role domain.Role) domain.SessionClaims {
	return domain.SessionClaims{SubjectID: "actor-" + string(role), Role: role}
}

func yearsAgo(years int) time.Time {
	d := testNow.AddDate(-years, 0, 0)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func validInput(email, document string, role domain.Role) EmployeeInput {
	return EmployeeInput{
		FirstName:      "Maria",
		LastName:       "Souza",
		Email:          email,
		DocumentNumber: document,
		BirthDate:      yearsAgo(30),
		Password:       "Secret@123",
		Role:           role,
		Phones:         []string{"11 90000-0001", "11 90000-0002"},
	}
}

// racingRepository hides existing records from the pre-flight uniqueness probes, the way a
// concurrent writer that has not committed yet would.
type racingRepository struct {
	repository.EmployeeRepository
}

func (racingRepository) EmailTaken(context.Context, string, string) (bool, error)    { return false, nil }
func (racingRepository) DocumentTaken(context.Context, string, string) (bool, error) { return false, nil }

// interferingRepository runs interfere right before each Update or Delete reaches storage.
type interferingRepository struct {
	repository.EmployeeRepository
	interfere func(ctx context.Context, id string)
}

func (r interferingRepository) Update(ctx context.Context, employee *domain.Employee, phones domain.PhoneDiff) error {
	r.interfere(ctx, employee.ID)
	return r.EmployeeRepository.Update(ctx, employee, phones)
}

func (r interferingRepository) Delete(ctx context.Context, id string, version int64) error {
	r.interfere(ctx, id)
	return r.EmployeeRepository.Delete(ctx, id, version)
}
