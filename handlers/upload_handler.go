package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/A25-CS060-teamAsah/backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	maxUploadSize    = 10 << 20 // 10MB
	errorSampleLimit = 10
)

var allowedCSVContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

type UploadHandler struct {
	CSV         *services.CSVService
	Customers   *services.CustomerService
	AutoPredict *services.AutoPredictService
}

func NewUploadHandler(csv *services.CSVService, customers *services.CustomerService, autoPredict *services.AutoPredictService) *UploadHandler {
	return &UploadHandler{CSV: csv, Customers: customers, AutoPredict: autoPredict}
}

// UploadCustomers ingests a CSV file: parse, validate, insert valid
// rows independently, then schedule background scoring for everything
// inserted. The response carries counts for every stage plus the first
// few errors of each kind; full error lists are never returned.
func (h *UploadHandler) UploadCustomers(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("csvfile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "missing file: expected multipart field 'csvfile'",
		})
	}

	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   "file exceeds the 10MB upload limit",
		})
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "only .csv files are accepted",
		})
	}

	contentType := strings.TrimSpace(strings.Split(fileHeader.Header.Get("Content-Type"), ";")[0])
	if contentType != "" && !allowedCSVContentTypes[strings.ToLower(contentType)] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "unsupported content type for CSV upload",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to open uploaded file",
		})
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read uploaded file",
		})
	}
	if len(fileBytes) > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   "file exceeds the 10MB upload limit",
		})
	}

	parseResult, err := h.CSV.ParseAndValidate(fileBytes)
	if err != nil {
		// Structural failures halt the whole upload with a single error
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	insertResult := h.Customers.BulkCreate(c.Context(), parseResult.Valid)

	summary := buildUploadSummary(parseResult, insertResult)

	customerIDs := make([]string, 0, len(insertResult.Created))
	for _, customer := range insertResult.Created {
		customerIDs = append(customerIDs, customer.ID)
	}
	h.AutoPredict.TriggerForBatch(customerIDs)

	logrus.WithFields(logrus.Fields{
		"filename":      fileHeader.Filename,
		"total_records": summary.TotalRecords,
		"inserted":      summary.InsertedCount,
		"invalid":       summary.InvalidCount,
		"insert_failed": summary.InsertFailedCount,
	}).Info("CSV upload processed")

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// DownloadTemplate serves a CSV template with the expected columns
func (h *UploadHandler) DownloadTemplate(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="customer_template.csv"`)
	return c.SendString(h.CSV.GenerateTemplate())
}

func buildUploadSummary(parseResult *models.ParseResult, insertResult *models.BulkInsertResult) *models.UploadSummary {
	summary := &models.UploadSummary{
		TotalRecords:      parseResult.TotalRecords,
		ValidCount:        len(parseResult.Valid),
		InvalidCount:      len(parseResult.Invalid),
		InsertedCount:     len(insertResult.Created),
		InsertFailedCount: len(insertResult.Failed),
	}

	summary.InvalidSamples = parseResult.Invalid
	if len(summary.InvalidSamples) > errorSampleLimit {
		summary.InvalidSamples = summary.InvalidSamples[:errorSampleLimit]
	}
	summary.InsertFailures = insertResult.Failed
	if len(summary.InsertFailures) > errorSampleLimit {
		summary.InsertFailures = summary.InsertFailures[:errorSampleLimit]
	}

	if summary.InsertFailedCount > 0 {
		samples := make([]string, 0, len(summary.InsertFailures))
		for _, failure := range summary.InsertFailures {
			samples = append(samples, failure.Error)
		}
		logrus.Warn(shared.BuildBatchErrorSummary(summary.InsertedCount, summary.InsertFailedCount, samples))
	}

	return summary
}
