package models

import "time"

// Prediction is a persisted scoring result for a customer.
type Prediction struct {
	ID            string    `json:"id" db:"id"`
	CustomerID    string    `json:"customer_id" db:"customer_id"`
	Probability   float64   `json:"probability" db:"probability"`
	WillSubscribe bool      `json:"will_subscribe" db:"will_subscribe"`
	ModelVersion  string    `json:"model_version" db:"model_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PredictionResult is what the cached scoring path returns to callers.
// Exactly one of the three shapes applies: a pending marker, a cached
// result, or a freshly computed result.
type PredictionResult struct {
	CustomerID    string    `json:"customer_id"`
	Probability   float64   `json:"probability"`
	WillSubscribe bool      `json:"will_subscribe"`
	ModelVersion  string    `json:"model_version"`
	ScoredAt      time.Time `json:"scored_at"`
	FromCache     bool      `json:"from_cache"`
	Pending       bool      `json:"pending,omitempty"`
}

// CustomerFeatures is the fixed feature schema the scoring service expects.
type CustomerFeatures struct {
	Age           int     `json:"age"`
	Job           string  `json:"job"`
	Marital       string  `json:"marital"`
	Education     string  `json:"education"`
	CreditDefault bool    `json:"default"`
	Housing       bool    `json:"housing"`
	Loan          bool    `json:"loan"`
	Contact       string  `json:"contact"`
	Month         string  `json:"month"`
	DayOfWeek     string  `json:"day_of_week"`
	Campaign      int     `json:"campaign"`
	Pdays         int     `json:"pdays"`
	Previous      int     `json:"previous"`
	Poutcome      string  `json:"poutcome"`
	Balance       float64 `json:"balance"`
}

// MLBatchRequest is the body for the scoring service batch endpoint.
type MLBatchRequest struct {
	Customers []CustomerFeatures `json:"customers"`
}

// MLPredictionItem is one positional result from the scoring service.
// Prediction is 1 when the model expects a subscription, 0 otherwise.
// Error is set instead of the score fields when that item failed.
type MLPredictionItem struct {
	Probability  float64 `json:"probability"`
	Prediction   int     `json:"prediction"`
	ModelVersion string  `json:"model_version"`
	Error        string  `json:"error,omitempty"`
}

// MLBatchResponse wraps the positional results of a batch scoring call.
type MLBatchResponse struct {
	Predictions []MLPredictionItem `json:"predictions"`
}

// MLHealthResponse is the scoring service health endpoint body.
type MLHealthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version,omitempty"`
}

// SweepSummary reports the outcome of one auto-predict sweep.
type SweepSummary struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Skipped bool     `json:"skipped"`
	Reason  string   `json:"reason,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}
