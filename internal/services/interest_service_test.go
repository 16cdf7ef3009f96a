package services

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInterestService_RunAccrual(t *testing.T) {
	t.Run("credits quarter of the annual rate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		service := NewInterestService(db, savingsTestConfig())

		mock.ExpectQuery("SELECT id, user_id, balance FROM savings_accounts").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance"}).
				AddRow("acct-1", "user-1", "100000"))

		mock.ExpectBegin()
		// 100000 * 0.10 / 4 = 2500.00
		mock.ExpectQuery("UPDATE savings_accounts").
			WithArgs(decimal.RequireFromString("2500.00"), "acct-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("102500"))
		mock.ExpectExec("INSERT INTO savings_transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		result, err := service.RunAccrual(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Processed)
		assert.Empty(t, result.Errors)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("interest rounds to two decimal places", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		service := NewInterestService(db, savingsTestConfig())

		mock.ExpectQuery("SELECT id, user_id, balance FROM savings_accounts").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance"}).
				AddRow("acct-1", "user-1", "1234.55"))

		mock.ExpectBegin()
		// 1234.55 * 0.025 = 30.86375, rounds to 30.86
		mock.ExpectQuery("UPDATE savings_accounts").
			WithArgs(decimal.RequireFromString("30.86"), "acct-1").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("1265.41"))
		mock.ExpectExec("INSERT INTO savings_transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		result, err := service.RunAccrual(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Processed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("one account failing does not abort the batch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		service := NewInterestService(db, savingsTestConfig())

		mock.ExpectQuery("SELECT id, user_id, balance FROM savings_accounts").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance"}).
				AddRow("acct-1", "user-1", "100000").
				AddRow("acct-2", "user-2", "40000"))

		// First account fails at the balance update.
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE savings_accounts").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		// Second account still gets credited.
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE savings_accounts").
			WithArgs(decimal.RequireFromString("1000.00"), "acct-2").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("41000"))
		mock.ExpectExec("INSERT INTO savings_transactions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		result, err := service.RunAccrual(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Processed)
		assert.Len(t, result.Errors, 1)
		assert.Equal(t, "acct-1", result.Errors[0].AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no eligible accounts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		service := NewInterestService(db, savingsTestConfig())

		mock.ExpectQuery("SELECT id, user_id, balance FROM savings_accounts").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance"}))

		result, err := service.RunAccrual(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Processed)
		assert.Empty(t, result.Errors)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInterestService_ResetQuarterHandler(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewInterestService(db, savingsTestConfig())

	mock.ExpectExec("UPDATE savings_accounts").
		WillReturnResult(sqlmock.NewResult(0, 7))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interest/reset-quarter", nil)
	rec := httptest.NewRecorder()

	service.ResetQuarterHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
