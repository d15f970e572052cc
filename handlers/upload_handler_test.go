package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUploadApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mlServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.MLHealthResponse{Status: "ERROR"})
	}))

	cache := services.NewCacheStore(time.Minute, time.Hour, 10*time.Minute)
	customers := services.NewCustomerService(db)
	autoPredict := services.NewAutoPredictService(
		customers,
		services.NewPredictionService(db),
		services.NewScoringGateway(mlServer.URL, time.Second),
		cache,
		50,
	)

	handler := NewUploadHandler(services.NewCSVService(), customers, autoPredict)

	app := fiber.New()
	app.Post("/upload", handler.UploadCustomers)
	app.Get("/template", handler.DownloadTemplate)

	cleanup := func() {
		mlServer.Close()
		cache.Stop()
		db.Close()
	}
	return app, mock, cleanup
}

func csvUploadRequest(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="csvfile"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

const uploadHeader = "name,age,job,marital,education,default,housing,loan,contact,month,day_of_week,campaign,pdays,previous,poutcome,balance"

func TestUpload_RejectsNonCSVExtension(t *testing.T) {
	app, _, cleanup := setupUploadApp(t)
	defer cleanup()

	req := csvUploadRequest(t, "customers.xlsx", "text/csv", "whatever")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpload_RejectsDisallowedContentType(t *testing.T) {
	app, _, cleanup := setupUploadApp(t)
	defer cleanup()

	req := csvUploadRequest(t, "customers.csv", "application/pdf", "whatever")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpload_MissingField(t *testing.T) {
	app, _, cleanup := setupUploadApp(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpload_StructuralErrorHaltsUpload(t *testing.T) {
	app, mock, cleanup := setupUploadApp(t)
	defer cleanup()

	req := csvUploadRequest(t, "customers.csv", "text/csv", "name,age\nJane,35")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "missing required columns")

	// Structural failures insert nothing
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpload_PartialFailureResponse(t *testing.T) {
	app, mock, cleanup := setupUploadApp(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(0, 1))

	content := uploadHeader + "\n" +
		"Jane,35,technician,married,university.degree,no,yes,no,cellular,may,mon,2,999,0,nonexistent,1500\n" +
		"Bad,17,technician,married,university.degree,no,yes,no,cellular,may,mon,2,999,0,nonexistent,1500"

	req := csvUploadRequest(t, "customers.csv", "text/csv", content)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Success bool                 `json:"success"`
		Data    models.UploadSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Data.TotalRecords)
	assert.Equal(t, 1, body.Data.ValidCount)
	assert.Equal(t, 1, body.Data.InvalidCount)
	assert.Equal(t, 1, body.Data.InsertedCount)
	require.Len(t, body.Data.InvalidSamples, 1)
	assert.Equal(t, 3, body.Data.InvalidSamples[0].Row)
}

func TestDownloadTemplate(t *testing.T) {
	app, _, cleanup := setupUploadApp(t)
	defer cleanup()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/template", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "day_of_week")
}
