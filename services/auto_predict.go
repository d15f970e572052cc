package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/sirupsen/logrus"
)

// AutoPredictService coordinates scoring: the cached single-customer
// path, the periodic sweep over unscored customers, and fire-and-forget
// triggers fired after create and upload.
type AutoPredictService struct {
	customers   *CustomerService
	predictions *PredictionService
	gateway     *ScoringGateway
	cache       *CacheStore
	pacer       *shared.RequestPacer
	batchSize   int
}

func NewAutoPredictService(
	customers *CustomerService,
	predictions *PredictionService,
	gateway *ScoringGateway,
	cache *CacheStore,
	batchSize int,
) *AutoPredictService {
	return &AutoPredictService{
		customers:   customers,
		predictions: predictions,
		gateway:     gateway,
		cache:       cache,
		pacer:       shared.NewRequestPacer(100 * time.Millisecond),
		batchSize:   batchSize,
	}
}

// ScoreCustomerCached scores one customer through the cache. A cached
// result returns immediately tagged FromCache. If another call for the
// same customer is already in flight the pending marker is observed and
// a pending result returns instead of blocking. On every failure path
// the pending marker is cleared before the error propagates; it must
// never leak.
func (s *AutoPredictService) ScoreCustomerCached(ctx context.Context, customerID string, forceRefresh bool) (*models.PredictionResult, error) {
	if !forceRefresh {
		if cached, ok := s.cache.GetPrediction(customerID); ok {
			result := *cached
			result.FromCache = true
			return &result, nil
		}
	}

	if !s.cache.TryMarkPending(customerID) {
		return &models.PredictionResult{CustomerID: customerID, Pending: true}, nil
	}

	result, err := s.scoreAndPersist(ctx, customerID)
	if err != nil {
		s.cache.ClearPending(customerID)
		return nil, err
	}

	s.cache.SetPrediction(customerID, result)
	s.cache.ClearPending(customerID)
	return result, nil
}

// RunSweep scores up to batchSize customers that have no prediction.
// An unhealthy scoring service skips the whole sweep; individual
// scoring failures are collected into the summary and never abort
// sibling customers.
func (s *AutoPredictService) RunSweep(ctx context.Context) (*models.SweepSummary, error) {
	healthy, reason := s.gateway.HealthCheck(ctx)
	if !healthy {
		summary := &models.SweepSummary{Skipped: true, Reason: "ML service unavailable"}
		logrus.WithField("reason", reason).Warn("Auto-predict sweep skipped")
		s.cache.SetLastSweep(summary)
		return summary, nil
	}

	customers, err := s.customers.ListWithoutPrediction(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unscored customers: %w", err)
	}

	summary := &models.SweepSummary{Total: len(customers)}
	if len(customers) == 0 {
		s.cache.SetLastSweep(summary)
		return summary, nil
	}

	if len(customers) == 1 {
		s.scoreSequentially(ctx, customers, summary)
	} else {
		s.scoreViaBatch(ctx, customers, summary)
	}

	logrus.WithFields(logrus.Fields{
		"total":   summary.Total,
		"success": summary.Success,
		"failed":  summary.Failed,
	}).Info("Auto-predict sweep completed")

	s.cache.SetLastSweep(summary)
	return summary, nil
}

// TriggerForNewCustomer schedules scoring for a just-created customer.
// The caller's HTTP response does not wait for it; failures are logged
// and never surfaced.
func (s *AutoPredictService) TriggerForNewCustomer(customerID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.ScoreCustomerCached(ctx, customerID, false); err != nil {
			logScoringFailure(customerID, err)
		}
	}()
}

// TriggerForBatch schedules sequential scoring for a set of customers,
// typically a fresh CSV import. Fire-and-forget like the single trigger.
func (s *AutoPredictService) TriggerForBatch(customerIDs []string) {
	if len(customerIDs) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		for _, id := range customerIDs {
			if err := s.pacer.Wait(ctx); err != nil {
				logrus.WithError(err).Warn("Background batch scoring cancelled")
				return
			}
			if _, err := s.ScoreCustomerCached(ctx, id, false); err != nil {
				logScoringFailure(id, err)
			}
		}
	}()
}

// logScoringFailure is the error boundary for fire-and-forget scoring.
// Service errors are logged with their full structured context.
func logScoringFailure(customerID string, err error) {
	var svcErr *shared.ServiceError
	if errors.As(err, &svcErr) {
		svcErr.LogError()
		return
	}
	logrus.WithError(err).WithField("customer_id", customerID).Warn("Background scoring failed")
}

// scoreViaBatch attempts one batch call for the whole set. Per-item
// errors inside the response are recorded per customer. If the call
// itself fails at the transport level, every customer is retried
// individually instead.
func (s *AutoPredictService) scoreViaBatch(ctx context.Context, customers []models.Customer, summary *models.SweepSummary) {
	featureList := make([]models.CustomerFeatures, len(customers))
	for i := range customers {
		featureList[i] = BuildFeatures(&customers[i])
	}

	items, err := s.gateway.ScoreBatch(ctx, featureList)
	if err != nil {
		logrus.WithError(err).Warn("Batch scoring call failed, falling back to sequential scoring")
		s.scoreSequentially(ctx, customers, summary)
		return
	}

	for i, item := range items {
		customer := customers[i]
		if item.Error != "" {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("customer %s: %s", customer.ID, item.Error))
			continue
		}

		scored := item
		prediction, err := s.predictions.Save(ctx, customer.ID, &scored)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("customer %s: failed to persist prediction: %v", customer.ID, err))
			continue
		}

		s.cache.SetPrediction(customer.ID, resultFromPrediction(prediction))
		summary.Success++
	}
}

// scoreSequentially runs each customer through the forced cached path,
// paced so the fallback does not hammer the scoring service.
func (s *AutoPredictService) scoreSequentially(ctx context.Context, customers []models.Customer, summary *models.SweepSummary) {
	for i := range customers {
		customer := customers[i]

		if err := s.pacer.Wait(ctx); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("customer %s: %v", customer.ID, err))
			continue
		}

		result, err := s.ScoreCustomerCached(ctx, customer.ID, true)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("customer %s: %v", customer.ID, err))
			continue
		}
		if result.Pending {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("customer %s: scoring already in flight", customer.ID))
			continue
		}
		summary.Success++
	}
}

// scoreAndPersist is the uncached scoring pipeline for one customer:
// fetch, score, persist, build the result.
func (s *AutoPredictService) scoreAndPersist(ctx context.Context, customerID string) (*models.PredictionResult, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, shared.CodePersistenceError,
			"auto-predict", "score_customer", false)
	}
	if customer == nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeNotFound,
			fmt.Sprintf("customer %s not found", customerID), "auto-predict", "score_customer", false, nil)
	}

	item, err := s.gateway.ScoreOne(ctx, BuildFeatures(customer))
	if err != nil {
		return nil, err
	}

	prediction, err := s.predictions.Save(ctx, customerID, item)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, shared.CodePersistenceError,
			"auto-predict", "score_customer", false)
	}

	return resultFromPrediction(prediction), nil
}

func resultFromPrediction(p *models.Prediction) *models.PredictionResult {
	return &models.PredictionResult{
		CustomerID:    p.CustomerID,
		Probability:   p.Probability,
		WillSubscribe: p.WillSubscribe,
		ModelVersion:  p.ModelVersion,
		ScoredAt:      p.CreatedAt,
	}
}
