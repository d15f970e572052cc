package services

import (
	"context"
	"testing"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPredictionService(t *testing.T) (*PredictionService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewPredictionService(db), mock, func() { db.Close() }
}

var predictionColumns = []string{"id", "customer_id", "probability", "will_subscribe", "model_version", "created_at"}

func TestSave_MapsPredictionFlag(t *testing.T) {
	service, mock, cleanup := setupPredictionService(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO predictions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO predictions").WillReturnResult(sqlmock.NewResult(0, 1))

	positive, err := service.Save(context.Background(), "c1", &models.MLPredictionItem{
		Probability: 0.9, Prediction: 1, ModelVersion: "v2.1",
	})
	require.NoError(t, err)
	assert.True(t, positive.WillSubscribe)
	assert.NotEmpty(t, positive.ID)

	negative, err := service.Save(context.Background(), "c1", &models.MLPredictionItem{
		Probability: 0.1, Prediction: 0, ModelVersion: "v2.1",
	})
	require.NoError(t, err)
	assert.False(t, negative.WillSubscribe)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestForCustomer_NoneReturnsNil(t *testing.T) {
	service, mock, cleanup := setupPredictionService(t)
	defer cleanup()

	mock.ExpectQuery("FROM predictions").WithArgs("unscored").
		WillReturnRows(sqlmock.NewRows(predictionColumns))

	prediction, err := service.LatestForCustomer(context.Background(), "unscored")
	require.NoError(t, err)
	assert.Nil(t, prediction)
}

func TestLatestForCustomer_Found(t *testing.T) {
	service, mock, cleanup := setupPredictionService(t)
	defer cleanup()

	mock.ExpectQuery("FROM predictions").WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(predictionColumns).
			AddRow("p1", "c1", 0.77, true, "v2.1", time.Now()))

	prediction, err := service.LatestForCustomer(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, prediction)
	assert.Equal(t, 0.77, prediction.Probability)
	assert.True(t, prediction.WillSubscribe)
}

func TestCountAll(t *testing.T) {
	service, mock, cleanup := setupPredictionService(t)
	defer cleanup()

	mock.ExpectQuery("COUNT\\(\\*\\) FROM predictions").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := service.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
