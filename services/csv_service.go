package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/sirupsen/logrus"
)

// Required CSV columns. balance is accepted but optional; rows without
// it get a zero balance.
var requiredCSVColumns = []string{
	"name", "age", "job", "marital", "education", "default",
	"housing", "loan", "contact", "month", "day_of_week",
	"campaign", "pdays", "previous", "poutcome",
}

// CSVService parses and validates uploaded customer CSV files.
type CSVService struct{}

func NewCSVService() *CSVService {
	return &CSVService{}
}

// ParseAndValidate runs the full pipeline on raw file bytes: parse,
// structure validation, then per-row coercion and field validation.
// Structural failures (malformed CSV, missing columns, empty file)
// return a single error and no row results. Row failures never abort
// other rows; they are collected in the Invalid list with 1-based file
// line numbers (the first data row is row 2).
func (s *CSVService) ParseAndValidate(fileBytes []byte) (*models.ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(fileBytes))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeParseError,
			fmt.Sprintf("malformed CSV: %v", err), "csv-service", "parse", false, err)
	}

	if len(records) == 0 {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeStructureError,
			"empty file: no records parsed", "csv-service", "structure_validate", false, nil)
	}

	columnIndex, missing := indexHeader(records[0])
	if len(missing) > 0 {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeStructureError,
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
			"csv-service", "structure_validate", false, nil).WithDetails(missing)
	}

	dataRows := records[1:]
	if len(dataRows) == 0 {
		return nil, shared.NewServiceError(shared.ErrorCategoryValidation, shared.CodeStructureError,
			"empty file: header only, no data rows", "csv-service", "structure_validate", false, nil)
	}

	result := &models.ParseResult{TotalRecords: len(dataRows)}
	for i, record := range dataRows {
		rowNumber := i + 2
		input, rowErrs := s.buildRow(record, columnIndex)
		if fieldErrs := input.Validate(); len(fieldErrs) > 0 {
			rowErrs = append(rowErrs, fieldErrs...)
		}

		if len(rowErrs) > 0 {
			result.Invalid = append(result.Invalid, models.InvalidRow{Row: rowNumber, Data: record, Errors: rowErrs})
			continue
		}
		result.Valid = append(result.Valid, models.ValidRow{Row: rowNumber, Customer: *input})
	}

	logrus.WithFields(logrus.Fields{
		"total_records": result.TotalRecords,
		"valid":         len(result.Valid),
		"invalid":       len(result.Invalid),
	}).Info("CSV parsed and validated")

	return result, nil
}

// GenerateTemplate returns a downloadable CSV template with the full
// header and two example rows.
func (s *CSVService) GenerateTemplate() string {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := append(append([]string{}, requiredCSVColumns...), "balance")
	writer.Write(header)
	writer.Write([]string{
		"Jane Doe", "35", "technician", "married", "university.degree", "no",
		"yes", "no", "cellular", "may", "mon", "2", "999", "0", "nonexistent", "1500.50",
	})
	writer.Write([]string{
		"John Smith", "52", "blue-collar", "divorced", "basic.9y", "no",
		"no", "yes", "telephone", "jul", "thu", "1", "10", "2", "success", "0",
	})
	writer.Flush()

	return buf.String()
}

// indexHeader maps normalized column names to their positions and
// reports every required column that is absent.
func indexHeader(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, seen := index[normalized]; !seen {
			index[normalized] = i
		}
	}

	var missing []string
	for _, column := range requiredCSVColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	return index, missing
}

// buildRow coerces one raw record into a typed input. Coercion failures
// are collected as row errors, except balance which silently defaults
// to 0 on any parse failure.
func (s *CSVService) buildRow(record []string, columnIndex map[string]int) (*models.CustomerInput, []string) {
	var errs []string

	field := func(name string) string {
		idx, ok := columnIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	parseIntField := func(name string) int {
		raw := field(name)
		value, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a whole number, got %q", name, raw))
			return 0
		}
		return value
	}

	parseBoolField := func(name string) bool {
		return coerceBool(field(name))
	}

	input := &models.CustomerInput{
		Name:          field("name"),
		Age:           parseIntField("age"),
		Job:           strings.ToLower(field("job")),
		Marital:       strings.ToLower(field("marital")),
		Education:     strings.ToLower(field("education")),
		CreditDefault: parseBoolField("default"),
		Housing:       parseBoolField("housing"),
		Loan:          parseBoolField("loan"),
		Contact:       strings.ToLower(field("contact")),
		Month:         strings.ToLower(field("month")),
		DayOfWeek:     strings.ToLower(field("day_of_week")),
		Campaign:      parseIntField("campaign"),
		Pdays:         parseIntField("pdays"),
		Previous:      parseIntField("previous"),
		Poutcome:      strings.ToLower(field("poutcome")),
		Balance:       coerceBalance(field("balance")),
	}

	return input, errs
}

// coerceBool accepts yes/true/1 in any case; everything else, including
// empty and unrecognized values, coerces to false without failing the row.
func coerceBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// coerceBalance parses a balance value, defaulting to 0 on anything that
// is not a finite number. Balance problems never fail a row.
func coerceBalance(raw string) float64 {
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
