package services

import (
	"context"
	"testing"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_ValidatesInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewUserService(db)

	cases := []models.RegisterRequest{
		{Email: "not-an-email", Name: "Jane", Password: "longenough"},
		{Email: "jane@example.com", Name: "", Password: "longenough"},
		{Email: "jane@example.com", Name: "Jane", Password: "short"},
	}
	for _, req := range cases {
		_, err := service.Register(context.Background(), &req)
		assert.Error(t, err)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_HashesPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	service := NewUserService(db)
	user, err := service.Register(context.Background(), &models.RegisterRequest{
		Email: "Jane@Example.com", Name: "Jane", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))
}

func TestAuthenticate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	userColumns := []string{"id", "email", "name", "password_hash", "created_at"}

	mock.ExpectQuery("FROM users WHERE email").WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "jane@example.com", "Jane", string(hash), time.Now()))
	mock.ExpectQuery("FROM users WHERE email").WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u1", "jane@example.com", "Jane", string(hash), time.Now()))
	mock.ExpectQuery("FROM users WHERE email").WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	service := NewUserService(db)

	user, err := service.Authenticate(context.Background(), "jane@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = service.Authenticate(context.Background(), "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error as a wrong password
	_, err = service.Authenticate(context.Background(), "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
