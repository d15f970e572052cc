package models

// ValidRow is a CSV row that passed structure and field validation.
// Row is the 1-based line number in the file including the header,
// so the first data row is row 2.
type ValidRow struct {
	Row      int           `json:"row"`
	Customer CustomerInput `json:"customer"`
}

// InvalidRow is a CSV row that failed validation, carrying the original
// record alongside every violation found.
type InvalidRow struct {
	Row    int      `json:"row"`
	Data   []string `json:"data"`
	Errors []string `json:"errors"`
}

// ParseResult is the outcome of parsing and validating an uploaded CSV.
type ParseResult struct {
	Valid        []ValidRow   `json:"valid"`
	Invalid      []InvalidRow `json:"invalid"`
	TotalRecords int          `json:"total_records"`
}

// InsertFailure records one valid row that could not be persisted.
type InsertFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// BulkInsertResult reports per-row insertion outcomes. Rows are
// committed independently, so Created and Failed can both be non-empty.
type BulkInsertResult struct {
	Created []Customer      `json:"created"`
	Failed  []InsertFailure `json:"failed"`
}

// UploadSummary is the response body for a CSV upload, with counts at
// every stage and truncated error samples to bound the response size.
type UploadSummary struct {
	TotalRecords      int             `json:"total_records"`
	ValidCount        int             `json:"valid_count"`
	InvalidCount      int             `json:"invalid_count"`
	InsertedCount     int             `json:"inserted_count"`
	InsertFailedCount int             `json:"insert_failed_count"`
	InvalidSamples    []InvalidRow    `json:"invalid_samples,omitempty"`
	InsertFailures    []InsertFailure `json:"insert_failures,omitempty"`
}
