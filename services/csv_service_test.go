package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "name,age,job,marital,education,default,housing,loan,contact,month,day_of_week,campaign,pdays,previous,poutcome,balance"

func validCSVRow(name string) string {
	return fmt.Sprintf("%s,35,technician,married,university.degree,no,yes,no,cellular,may,mon,2,999,0,nonexistent,1500.50", name)
}

func TestParseAndValidate_ValidFile(t *testing.T) {
	svc := NewCSVService()
	file := strings.Join([]string{csvHeader, validCSVRow("Jane Doe"), validCSVRow("John Smith")}, "\n")

	result, err := svc.ParseAndValidate([]byte(file))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRecords)
	require.Len(t, result.Valid, 2)
	assert.Empty(t, result.Invalid)

	first := result.Valid[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "Jane Doe", first.Customer.Name)
	assert.Equal(t, 35, first.Customer.Age)
	assert.True(t, first.Customer.Housing)
	assert.False(t, first.Customer.Loan)
	assert.Equal(t, 1500.50, first.Customer.Balance)
}

func TestParseAndValidate_StripsHeaderBOM(t *testing.T) {
	svc := NewCSVService()
	file := "\ufeff" + csvHeader + "\n" + validCSVRow("Jane Doe")

	result, err := svc.ParseAndValidate([]byte(file))
	require.NoError(t, err)
	require.Len(t, result.Valid, 1)
	assert.Equal(t, "Jane Doe", result.Valid[0].Customer.Name)
}

func TestParseAndValidate_MissingColumnsListsAll(t *testing.T) {
	svc := NewCSVService()
	file := "name,age,job\nJane,35,technician"

	_, err := svc.ParseAndValidate([]byte(file))
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeStructureError))

	for _, column := range []string{"marital", "education", "default", "housing", "loan",
		"contact", "month", "day_of_week", "campaign", "pdays", "previous", "poutcome"} {
		assert.Contains(t, err.Error(), column)
	}
	// Present columns must not be reported missing
	assert.NotContains(t, err.Error(), "missing required columns: name")

	// The missing column list rides along as structured details
	var svcErr *shared.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ElementsMatch(t, []string{"marital", "education", "default", "housing", "loan",
		"contact", "month", "day_of_week", "campaign", "pdays", "previous", "poutcome"}, svcErr.Details)
}

func TestParseAndValidate_EmptyFile(t *testing.T) {
	svc := NewCSVService()

	for _, file := range []string{"", csvHeader} {
		_, err := svc.ParseAndValidate([]byte(file))
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeStructureError), "file %q", file)
	}
}

func TestParseAndValidate_MalformedCSV(t *testing.T) {
	svc := NewCSVService()
	// Unterminated quote in the header line
	_, err := svc.ParseAndValidate([]byte("name,\"age\nJane,35"))
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeParseError))
}

func TestParseAndValidate_RowFailuresAreIndependent(t *testing.T) {
	svc := NewCSVService()
	file := strings.Join([]string{
		csvHeader,
		validCSVRow("Good One"),
		"Bad Age,17,technician,married,university.degree,no,yes,no,cellular,may,mon,2,999,0,nonexistent,100",
		validCSVRow("Good Two"),
		",35,astronaut,married,university.degree,maybe,yes,no,cellular,may,mon,2,999,0,nonexistent,100",
	}, "\n")

	result, err := svc.ParseAndValidate([]byte(file))
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRecords)
	assert.Len(t, result.Valid, 2)
	require.Len(t, result.Invalid, 2)

	assert.Equal(t, 3, result.Invalid[0].Row)
	assert.Contains(t, strings.Join(result.Invalid[0].Errors, "; "), "age")
	assert.Equal(t, "Bad Age", result.Invalid[0].Data[0], "invalid rows carry the original record")

	// Row 5 collects every violation, not just the first
	assert.Equal(t, 5, result.Invalid[1].Row)
	joined := strings.Join(result.Invalid[1].Errors, "; ")
	assert.Contains(t, joined, "name")
	assert.Contains(t, joined, "job")
}

func TestParseAndValidate_BalanceNeverFailsRow(t *testing.T) {
	svc := NewCSVService()

	for _, balance := range []string{"", "NaN", "not-a-number", "Inf", "null"} {
		row := fmt.Sprintf("Jane,35,technician,married,university.degree,no,yes,no,cellular,may,mon,2,999,0,nonexistent,%s", balance)
		result, err := svc.ParseAndValidate([]byte(csvHeader + "\n" + row))
		require.NoError(t, err)
		require.Len(t, result.Valid, 1, "balance %q", balance)
		assert.Equal(t, float64(0), result.Valid[0].Customer.Balance, "balance %q", balance)
	}
}

func TestParseAndValidate_MissingOptionalBalanceColumn(t *testing.T) {
	svc := NewCSVService()
	header := strings.TrimSuffix(csvHeader, ",balance")
	row := "Jane,35,technician,married,university.degree,no,yes,no,cellular,may,mon,2,999,0,nonexistent"

	result, err := svc.ParseAndValidate([]byte(header + "\n" + row))
	require.NoError(t, err)
	require.Len(t, result.Valid, 1)
	assert.Equal(t, float64(0), result.Valid[0].Customer.Balance)
}

func TestGenerateTemplate(t *testing.T) {
	svc := NewCSVService()
	template := svc.GenerateTemplate()

	// The template must parse cleanly through the upload pipeline
	result, err := svc.ParseAndValidate([]byte(template))
	require.NoError(t, err)
	assert.Len(t, result.Valid, 2)
	assert.Empty(t, result.Invalid)
}

func TestCoerceBool(t *testing.T) {
	truthy := []string{"yes", "YES", "true", "True", "1"}
	falsy := []string{"no", "NO", "false", "False", "0", "", "maybe", "2"}

	for _, raw := range truthy {
		assert.True(t, coerceBool(raw), raw)
	}
	for _, raw := range falsy {
		assert.False(t, coerceBool(raw), raw)
	}
}

func TestParseAndValidate_UnrecognizedBooleanCoercesFalse(t *testing.T) {
	svc := NewCSVService()
	row := "Jane,35,technician,married,university.degree,maybe,yes,no,cellular,may,mon,2,999,0,nonexistent,100"

	result, err := svc.ParseAndValidate([]byte(csvHeader + "\n" + row))
	require.NoError(t, err)
	require.Len(t, result.Valid, 1, "unrecognized boolean must not fail the row")
	assert.Empty(t, result.Invalid)
	assert.False(t, result.Valid[0].Customer.CreditDefault)
	assert.True(t, result.Valid[0].Customer.Housing)
}

func TestCoerceBalanceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("finite numeric strings round-trip", prop.ForAll(
		func(value float64) bool {
			coerced := coerceBalance(fmt.Sprintf("%v", value))
			return coerced == value
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("arbitrary strings never panic and yield a finite value", prop.ForAll(
		func(raw string) bool {
			coerced := coerceBalance(raw)
			return coerced == coerced && coerced < 1e308 && coerced > -1e308
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
