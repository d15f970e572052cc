package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const customerColumns = `id, name, age, job, marital, education, credit_default, housing, loan,
	contact, month, day_of_week, campaign, pdays, previous, poutcome, balance, created_at, updated_at`

// CustomerService owns customer persistence and field validation.
type CustomerService struct {
	db *sql.DB
}

func NewCustomerService(db *sql.DB) *CustomerService {
	return &CustomerService{db: db}
}

// Create validates and persists a new customer
func (s *CustomerService) Create(ctx context.Context, input *models.CustomerInput) (*models.Customer, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeRowValidation,
			strings.Join(errs, "; "), "customer-service", "create", false, nil)
	}

	customer := customerFromInput(input)
	customer.ID = uuid.New().String()
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `
		INSERT INTO customers (id, name, age, job, marital, education, credit_default, housing, loan,
			contact, month, day_of_week, campaign, pdays, previous, poutcome, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := s.db.ExecContext(ctx, query,
		customer.ID, customer.Name, customer.Age, customer.Job, customer.Marital, customer.Education,
		customer.CreditDefault, customer.Housing, customer.Loan, customer.Contact, customer.Month,
		customer.DayOfWeek, customer.Campaign, customer.Pdays, customer.Previous, customer.Poutcome,
		customer.Balance, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// GetByID returns a customer by id, or (nil, nil) when not found
func (s *CustomerService) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)

	customer, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// List returns a page of customers ordered by creation time, newest
// first, plus the total count for pagination.
func (s *CustomerService) List(ctx context.Context, limit, offset int) ([]models.Customer, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, customerColumns)
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers, err := collectCustomers(rows)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Update validates and replaces a customer's mutable fields
func (s *CustomerService) Update(ctx context.Context, id string, input *models.CustomerInput) (*models.Customer, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeRowValidation,
			strings.Join(errs, "; "), "customer-service", "update", false, nil)
	}

	query := `
		UPDATE customers
		SET name = $2, age = $3, job = $4, marital = $5, education = $6, credit_default = $7,
			housing = $8, loan = $9, contact = $10, month = $11, day_of_week = $12,
			campaign = $13, pdays = $14, previous = $15, poutcome = $16, balance = $17,
			updated_at = $18
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		id, input.Name, input.Age, input.Job, input.Marital, input.Education, input.CreditDefault,
		input.Housing, input.Loan, input.Contact, input.Month, input.DayOfWeek,
		input.Campaign, input.Pdays, input.Previous, input.Poutcome, input.Balance, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetByID(ctx, id)
}

// Delete removes a customer. Predictions cascade at the database level.
func (s *CustomerService) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete customer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
}

// ListWithoutPrediction returns up to limit customers that have no
// prediction yet, oldest first so backlog drains in arrival order.
func (s *CustomerService) ListWithoutPrediction(ctx context.Context, limit int) ([]models.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		WHERE NOT EXISTS (SELECT 1 FROM predictions p WHERE p.customer_id = c.id)
		ORDER BY c.created_at ASC
		LIMIT $1`, strings.ReplaceAll(customerColumns, "id,", "c.id,"))

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored customers: %w", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// BulkCreate inserts each valid row independently. One row's failure is
// recorded without rolling back siblings already inserted, so a mostly
// good file yields mostly created customers plus a short failure list.
func (s *CustomerService) BulkCreate(ctx context.Context, rows []models.ValidRow) *models.BulkInsertResult {
	result := &models.BulkInsertResult{}

	for _, row := range rows {
		input := row.Customer
		customer, err := s.Create(ctx, &input)
		if err != nil {
			logrus.WithError(err).WithField("row", row.Row).Warn("Bulk insert row failed")
			result.Failed = append(result.Failed, models.InsertFailure{
				Row:   row.Row,
				Error: shared.WrapError(err, shared.ErrorCategoryDatabase, shared.CodePersistenceError, "customer-service", "bulk_create", false).Message,
			})
			continue
		}
		result.Created = append(result.Created, *customer)
	}

	logrus.WithFields(logrus.Fields{
		"created": len(result.Created),
		"failed":  len(result.Failed),
	}).Info("Bulk customer insert completed")

	return result
}

func customerFromInput(input *models.CustomerInput) *models.Customer {
	return &models.Customer{
		Name:          input.Name,
		Age:           input.Age,
		Job:           input.Job,
		Marital:       input.Marital,
		Education:     input.Education,
		CreditDefault: input.CreditDefault,
		Housing:       input.Housing,
		Loan:          input.Loan,
		Contact:       input.Contact,
		Month:         input.Month,
		DayOfWeek:     input.DayOfWeek,
		Campaign:      input.Campaign,
		Pdays:         input.Pdays,
		Previous:      input.Previous,
		Poutcome:      input.Poutcome,
		Balance:       input.Balance,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Age, &c.Job, &c.Marital, &c.Education, &c.CreditDefault,
		&c.Housing, &c.Loan, &c.Contact, &c.Month, &c.DayOfWeek, &c.Campaign, &c.Pdays,
		&c.Previous, &c.Poutcome, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCustomers(rows *sql.Rows) ([]models.Customer, error) {
	var customers []models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}
