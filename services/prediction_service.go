package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/google/uuid"
)

// PredictionService owns prediction persistence.
type PredictionService struct {
	db *sql.DB
}

func NewPredictionService(db *sql.DB) *PredictionService {
	return &PredictionService{db: db}
}

// Save persists a scoring result for a customer
func (s *PredictionService) Save(ctx context.Context, customerID string, item *models.MLPredictionItem) (*models.Prediction, error) {
	prediction := &models.Prediction{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		Probability:   item.Probability,
		WillSubscribe: item.Prediction == 1,
		ModelVersion:  item.ModelVersion,
		CreatedAt:     time.Now(),
	}

	query := `
		INSERT INTO predictions (id, customer_id, probability, will_subscribe, model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		prediction.ID, prediction.CustomerID, prediction.Probability,
		prediction.WillSubscribe, prediction.ModelVersion, prediction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	return prediction, nil
}

// LatestForCustomer returns the newest prediction for a customer, or
// (nil, nil) when the customer has never been scored.
func (s *PredictionService) LatestForCustomer(ctx context.Context, customerID string) (*models.Prediction, error) {
	query := `
		SELECT id, customer_id, probability, will_subscribe, model_version, created_at
		FROM predictions
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var p models.Prediction
	err := s.db.QueryRowContext(ctx, query, customerID).Scan(
		&p.ID, &p.CustomerID, &p.Probability, &p.WillSubscribe, &p.ModelVersion, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest prediction: %w", err)
	}
	return &p, nil
}

// ListForCustomer returns a customer's prediction history, newest first
func (s *PredictionService) ListForCustomer(ctx context.Context, customerID string, limit int) ([]models.Prediction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, customer_id, probability, will_subscribe, model_version, created_at
		FROM predictions
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Probability, &p.WillSubscribe, &p.ModelVersion, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return predictions, nil
}

// CountAll returns the total number of stored predictions
func (s *PredictionService) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return count, nil
}
