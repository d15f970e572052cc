package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/sirupsen/logrus"
)

// ScoringGateway is the HTTP client for the ML scoring service. It is
// the only component that speaks the scorer's wire contract; everything
// else works with models.Prediction values.
type ScoringGateway struct {
	baseURL string
	client  *http.Client
	metrics *shared.ServiceMetrics
}

// NewScoringGateway creates a gateway for the scoring service at baseURL
func NewScoringGateway(baseURL string, timeout time.Duration) *ScoringGateway {
	return &ScoringGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  shared.GetDefaultFactory().GetClient("ml-scoring", timeout),
		metrics: shared.NewServiceMetrics("scoring-gateway"),
	}
}

// BuildFeatures maps a customer record to the fixed feature schema the
// model expects. Pure transform; fills the documented defaults for
// fields a caller may have left at their zero value.
func BuildFeatures(customer *models.Customer) models.CustomerFeatures {
	features := models.CustomerFeatures{
		Age:           customer.Age,
		Job:           customer.Job,
		Marital:       customer.Marital,
		Education:     customer.Education,
		CreditDefault: customer.CreditDefault,
		Housing:       customer.Housing,
		Loan:          customer.Loan,
		Contact:       customer.Contact,
		Month:         customer.Month,
		DayOfWeek:     customer.DayOfWeek,
		Campaign:      customer.Campaign,
		Pdays:         customer.Pdays,
		Previous:      customer.Previous,
		Poutcome:      customer.Poutcome,
		Balance:       customer.Balance,
	}
	if features.Campaign < 1 {
		features.Campaign = 1
	}
	if features.Poutcome == "" {
		features.Poutcome = "unknown"
	}
	return features
}

// ScoreOne scores a single feature payload via POST /predict
func (g *ScoringGateway) ScoreOne(ctx context.Context, features models.CustomerFeatures) (*models.MLPredictionItem, error) {
	start := time.Now()

	body, err := json.Marshal(features)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, shared.CodeScoringError,
			"scoring-gateway", "score_one", false)
	}

	respBody, err := g.post(ctx, "/predict", body)
	if err != nil {
		g.metrics.RecordRequest(false, time.Since(start), shared.CodeServiceUnavailable)
		return nil, err
	}

	var item models.MLPredictionItem
	if err := json.Unmarshal(respBody, &item); err != nil {
		g.metrics.RecordRequest(false, time.Since(start), shared.CodeScoringError)
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, shared.CodeScoringError,
			"scoring-gateway", "score_one", false)
	}

	if item.Error != "" {
		g.metrics.RecordRequest(false, time.Since(start), shared.CodeScoringError)
		return nil, shared.NewServiceError(shared.ErrorCategoryProcessing, shared.CodeScoringError,
			item.Error, "scoring-gateway", "score_one", false, nil)
	}

	g.metrics.RecordRequest(true, time.Since(start), "")
	return &item, nil
}

// ScoreBatch scores a feature list via POST /predict/batch. The result
// is positional, same length and order as the input; per-item failures
// come back inside the items. A transport-level failure of the call
// itself returns a retryable ServiceUnavailable error so the caller can
// fall back to per-item scoring.
func (g *ScoringGateway) ScoreBatch(ctx context.Context, featureList []models.CustomerFeatures) ([]models.MLPredictionItem, error) {
	start := time.Now()

	body, err := json.Marshal(models.MLBatchRequest{Customers: featureList})
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, shared.CodeScoringError,
			"scoring-gateway", "score_batch", false)
	}

	respBody, err := g.post(ctx, "/predict/batch", body)
	if err != nil {
		g.metrics.RecordRequest(false, time.Since(start), shared.CodeServiceUnavailable)
		return nil, err
	}

	var batchResp models.MLBatchResponse
	if err := json.Unmarshal(respBody, &batchResp); err != nil {
		g.metrics.RecordRequest(false, time.Since(start), shared.CodeScoringError)
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, shared.CodeScoringError,
			"scoring-gateway", "score_batch", false)
	}

	if len(batchResp.Predictions) != len(featureList) {
		g.metrics.RecordRequest(false, time.Since(start), shared.CodeScoringError)
		return nil, shared.NewServiceError(shared.ErrorCategoryProcessing, shared.CodeScoringError,
			fmt.Sprintf("batch response has %d items for %d inputs", len(batchResp.Predictions), len(featureList)),
			"scoring-gateway", "score_batch", false, nil)
	}

	g.metrics.RecordRequest(true, time.Since(start), "")
	return batchResp.Predictions, nil
}

// HealthCheck queries GET /health and reports whether the scoring
// service can accept work. A reachable service reporting status ERROR
// is unhealthy, same as an unreachable one.
func (g *ScoringGateway) HealthCheck(ctx context.Context) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return false, fmt.Sprintf("failed to build health request: %v", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("ML service unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("ML service health returned status %d", resp.StatusCode)
	}

	var health models.MLHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, fmt.Sprintf("ML service health response malformed: %v", err)
	}

	if strings.EqualFold(health.Status, "error") {
		return false, "ML service reports status ERROR"
	}

	return true, ""
}

// Metrics exposes the gateway's request metrics snapshot
func (g *ScoringGateway) Metrics() map[string]interface{} {
	return g.metrics.Snapshot()
}

// LogMetricsSummary logs the gateway's request metrics at info level
func (g *ScoringGateway) LogMetricsSummary() {
	g.metrics.LogSummary()
}

func (g *ScoringGateway) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, shared.CodeServiceUnavailable,
			"scoring-gateway", path, true)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("Scoring service request failed")
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, shared.CodeServiceUnavailable,
			"scoring-gateway", path, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, shared.CodeServiceUnavailable,
			"scoring-gateway", path, true)
	}

	if resp.StatusCode >= 500 {
		return nil, shared.NewServiceError(shared.ErrorCategoryNetwork, shared.CodeServiceUnavailable,
			fmt.Sprintf("scoring service returned status %d", resp.StatusCode),
			"scoring-gateway", path, true, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, shared.NewServiceError(shared.ErrorCategoryProcessing, shared.CodeScoringError,
			fmt.Sprintf("scoring service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
			"scoring-gateway", path, false, nil)
	}

	return respBody, nil
}
