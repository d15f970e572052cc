package models

import (
	"fmt"
	"strings"
	"time"
)

// Customer represents a marketing lead with the demographic and
// campaign-history attributes the scoring model consumes.
type Customer struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Age           int       `json:"age" db:"age"`
	Job           string    `json:"job" db:"job"`
	Marital       string    `json:"marital" db:"marital"`
	Education     string    `json:"education" db:"education"`
	CreditDefault bool      `json:"default" db:"credit_default"`
	Housing       bool      `json:"housing" db:"housing"`
	Loan          bool      `json:"loan" db:"loan"`
	Contact       string    `json:"contact" db:"contact"`
	Month         string    `json:"month" db:"month"`
	DayOfWeek     string    `json:"day_of_week" db:"day_of_week"`
	Campaign      int       `json:"campaign" db:"campaign"`
	Pdays         int       `json:"pdays" db:"pdays"`
	Previous      int       `json:"previous" db:"previous"`
	Poutcome      string    `json:"poutcome" db:"poutcome"`
	Balance       float64   `json:"balance" db:"balance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerInput is the payload for create and update operations.
type CustomerInput struct {
	Name          string  `json:"name"`
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

// Fixed enumerations for categorical fields, matching the bank
// marketing dataset the scoring model was trained on.
var (
	ValidJobs = map[string]bool{
		"admin.": true, "blue-collar": true, "entrepreneur": true,
		"housemaid": true, "management": true, "retired": true,
		"self-employed": true, "services": true, "student": true,
		"technician": true, "unemployed": true, "unknown": true,
	}
	ValidMaritalStatuses = map[string]bool{
		"divorced": true, "married": true, "single": true, "unknown": true,
	}
	ValidEducationLevels = map[string]bool{
		"basic.4y": true, "basic.6y": true, "basic.9y": true,
		"high.school": true, "illiterate": true, "professional.course": true,
		"university.degree": true, "unknown": true,
	}
	ValidContactChannels = map[string]bool{
		"cellular": true, "telephone": true, "unknown": true,
	}
	ValidMonths = map[string]bool{
		"jan": true, "feb": true, "mar": true, "apr": true,
		"may": true, "jun": true, "jul": true, "aug": true,
		"sep": true, "oct": true, "nov": true, "dec": true,
	}
	ValidDaysOfWeek = map[string]bool{
		"mon": true, "tue": true, "wed": true, "thu": true, "fri": true,
	}
	ValidPoutcomes = map[string]bool{
		"failure": true, "nonexistent": true, "success": true, "unknown": true,
	}
)

// Validate checks all field constraints and returns every violation found,
// not just the first one.
func (c *CustomerInput) Validate() []string {
	var errs []string

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Age < 18 || c.Age > 100 {
		errs = append(errs, fmt.Sprintf("age must be between 18 and 100, got %d", c.Age))
	}
	if !ValidJobs[c.Job] {
		errs = append(errs, fmt.Sprintf("invalid job: %q", c.Job))
	}
	if !ValidMaritalStatuses[c.Marital] {
		errs = append(errs, fmt.Sprintf("invalid marital status: %q", c.Marital))
	}
	if !ValidEducationLevels[c.Education] {
		errs = append(errs, fmt.Sprintf("invalid education: %q", c.Education))
	}
	if !ValidContactChannels[c.Contact] {
		errs = append(errs, fmt.Sprintf("invalid contact channel: %q", c.Contact))
	}
	if !ValidMonths[c.Month] {
		errs = append(errs, fmt.Sprintf("invalid month: %q", c.Month))
	}
	if !ValidDaysOfWeek[c.DayOfWeek] {
		errs = append(errs, fmt.Sprintf("invalid day_of_week: %q", c.DayOfWeek))
	}
	if !ValidPoutcomes[c.Poutcome] {
		errs = append(errs, fmt.Sprintf("invalid poutcome: %q", c.Poutcome))
	}
	if c.Campaign < 1 || c.Campaign > 100 {
		errs = append(errs, fmt.Sprintf("campaign must be between 1 and 100, got %d", c.Campaign))
	}
	if c.Pdays < 0 || c.Pdays > 999 {
		errs = append(errs, fmt.Sprintf("pdays must be between 0 and 999, got %d", c.Pdays))
	}
	if c.Previous < 0 || c.Previous > 100 {
		errs = append(errs, fmt.Sprintf("previous must be between 0 and 100, got %d", c.Previous))
	}

	return errs
}
