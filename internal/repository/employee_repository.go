package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anna-paula-dante/employee-registration/internal/domain"
)

// EmployeeRepository handles persistence for roster records. Implementations enforce email and
// document uniqueness themselves and report violations as domain.ErrDuplicateEmail or
// domain.ErrDuplicateDocument.
type EmployeeRepository interface {
	// Create inserts the employee and its phones atomically and fills in Version and timestamps.
	Create(ctx context.Context, employee *domain.Employee) error
	// Update replaces the employee's fields and applies the phone diff atomically, provided
	// employee.Version still matches the stored version. It returns domain.ErrEmployeeStale
	// otherwise.
	Update(ctx context.Context, employee *domain.Employee, phones domain.PhoneDiff) error
	// Delete removes the employee at the given version together with its phones.
	Delete(ctx context.Context, id string, version int64) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	// GetByLogin matches the identifier against email first, then document number.
	GetByLogin(ctx context.Context, identifier string) (*domain.Employee, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	DocumentTaken(ctx context.Context, document, excludeID string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, int, error)
}

// EmployeeFilter defines query params for employee listing.
type EmployeeFilter struct {
	Search string
	Limit  int
	Offset int
}

const (
	constraintEmail    = "employees_email_lower_key"
	constraintDocument = "employees_document_number_key"
	constraintManager  = "employees_manager_id_fkey"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the postgres-backed repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id::text, first_name, last_name, email, document_number, birth_date, password_hash,
        role, manager_id::text, version, created_at, updated_at`

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (id, first_name, last_name, email, document_number, birth_date, password_hash, role, manager_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING version, created_at, updated_at`

	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query,
			employee.ID,
			employee.FirstName,
			employee.LastName,
			employee.Email,
			employee.DocumentNumber,
			employee.BirthDate,
			employee.PasswordHash,
			string(employee.Role),
			employee.ManagerID,
		).Scan(&employee.Version, &employee.CreatedAt, &employee.UpdatedAt); err != nil {
			return mapWriteError(err)
		}
		return insertPhones(ctx, tx, employee.ID, employee.Phones)
	})
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee, phones domain.PhoneDiff) error {
	const query = `
        UPDATE employees
        SET first_name=$1, last_name=$2, email=$3, document_number=$4, birth_date=$5, password_hash=$6,
            role=$7, manager_id=$8, version=version+1, updated_at=NOW()
        WHERE id=$9 AND version=$10
        RETURNING version, updated_at`

	return r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			employee.FirstName,
			employee.LastName,
			employee.Email,
			employee.DocumentNumber,
			employee.BirthDate,
			employee.PasswordHash,
			string(employee.Role),
			employee.ManagerID,
			employee.ID,
			employee.Version,
		).Scan(&employee.Version, &employee.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEmployeeStale
		}
		if err != nil {
			return mapWriteError(err)
		}

		if len(phones.ToRemove) > 0 {
			if _, err := tx.Exec(ctx,
				`DELETE FROM employee_phones WHERE employee_id=$1 AND number = ANY($2::text[])`,
				employee.ID, phones.ToRemove,
			); err != nil {
				return err
			}
		}
		return insertPhones(ctx, tx, employee.ID, phones.ToAdd)
	})
}

func (r *employeeRepository) Delete(ctx context.Context, id string, version int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1 AND version=$2`, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrEmployeeStale
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *employeeRepository) GetByLogin(ctx context.Context, identifier string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + `
        FROM employees
        WHERE lower(email) = lower($1) OR document_number = $1
        ORDER BY (lower(email) = lower($1)) DESC
        LIMIT 1`
	return r.getOne(ctx, query, identifier)
}

func (r *employeeRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM employees WHERE lower(email) = lower($1) AND id::text <> $2)`
	var taken bool
	err := r.pool.QueryRow(ctx, query, email, excludeID).Scan(&taken)
	return taken, err
}

func (r *employeeRepository) DocumentTaken(ctx context.Context, document, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM employees WHERE document_number = $1 AND id::text <> $2)`
	var taken bool
	err := r.pool.QueryRow(ctx, query, document, excludeID).Scan(&taken)
	return taken, err
}

func (r *employeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, int, error) {
	where := ""
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		where = ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR document_number ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + employeeColumns + ` FROM employees` + where +
		fmt.Sprintf(" ORDER BY lower(first_name), lower(last_name), id LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *employee)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachPhones(ctx, result); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *employeeRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Employee, error) {
	employee, err := scanEmployee(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	list := []domain.Employee{*employee}
	if err := r.attachPhones(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *employeeRepository) attachPhones(ctx context.Context, employees []domain.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	ids := make([]string, 0, len(employees))
	index := make(map[string]int, len(employees))
	for i := range employees {
		ids = append(ids, employees[i].ID)
		index[employees[i].ID] = i
		employees[i].Phones = []string{}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT employee_id::text, number FROM employee_phones WHERE employee_id = ANY($1::text[]::uuid[]) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID, number string
		if err := rows.Scan(&employeeID, &number); err != nil {
			return err
		}
		if i, ok := index[employeeID]; ok {
			employees[i].Phones = append(employees[i].Phones, number)
		}
	}
	return rows.Err()
}

func (r *employeeRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertPhones(ctx context.Context, tx pgx.Tx, employeeID string, numbers []string) error {
	if len(numbers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, number := range numbers {
		batch.Queue(`INSERT INTO employee_phones (employee_id, number) VALUES ($1, $2)`, employeeID, number)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	if err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.DocumentNumber,
		&employee.BirthDate,
		&employee.PasswordHash,
		&employee.Role,
		&employee.ManagerID,
		&employee.Version,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}

// mapWriteError translates storage constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintEmail:
			return domain.ErrDuplicateEmail
		case constraintDocument:
			return domain.ErrDuplicateDocument
		}
	case pgForeignKeyViolation:
		if pgErr.ConstraintName == constraintManager {
			return domain.ErrManagerNotFound
		}
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
