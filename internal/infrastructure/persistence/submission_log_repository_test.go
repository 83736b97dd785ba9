package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// newMockSubmissionLogRepository creates a repository with a mocked SQL connection
func newMockSubmissionLogRepository(t *testing.T) (*GormSubmissionLogRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSubmissionLogRepository(gormDB), mock, mockDB
}

func logRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_id", "status", "message", "correlation_id", "raw", "retry_count", "created_at", "updated_at",
	})
}

func TestGormSubmissionLogRepository_FindLatest(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockSubmissionLogRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := logRows().AddRow(3, "SO001", invoicing.SubmissionSuccess, "ok", "guid-1", "", 2, now, now)

		mock.ExpectQuery(`SELECT \* FROM "submission_logs" WHERE order_id = \$1 ORDER BY id DESC,.* LIMIT .*`).
			WithArgs("SO001", 1).
			WillReturnRows(rows)

		log, err := repo.FindLatest(context.Background(), "SO001")

		assert.NoError(t, err)
		require.NotNil(t, log)
		assert.Equal(t, uint(3), log.ID)
		assert.True(t, log.Succeeded())
		assert.Equal(t, 2, log.RetryCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown order", func(t *testing.T) {
		repo, mock, mockDB := newMockSubmissionLogRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "submission_logs" WHERE order_id = \$1 ORDER BY id DESC,.* LIMIT .*`).
			WithArgs("MISSING", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		log, err := repo.FindLatest(context.Background(), "MISSING")

		assert.Nil(t, log)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSubmissionLogRepository_Upsert(t *testing.T) {
	t.Run("inserts when no record exists", func(t *testing.T) {
		repo, mock, mockDB := newMockSubmissionLogRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "submission_logs" WHERE order_id = \$1 ORDER BY id DESC,.* LIMIT .*`).
			WithArgs("SO001", 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(`INSERT INTO "submission_logs"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		err := repo.Upsert(context.Background(), &invoicing.SubmissionLog{
			OrderID: "SO001",
			Status:  invoicing.SubmissionFailed,
			Message: "VALIDATING: order has no lines",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overwrites the existing record", func(t *testing.T) {
		repo, mock, mockDB := newMockSubmissionLogRepository(t)
		defer mockDB.Close()

		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "submission_logs" WHERE order_id = \$1 ORDER BY id DESC,.* LIMIT .*`).
			WithArgs("SO001", 1).
			WillReturnRows(logRows().AddRow(7, "SO001", invoicing.SubmissionFailed, "boom", "", "", 0, now, now))
		mock.ExpectExec(`UPDATE "submission_logs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		record := &invoicing.SubmissionLog{
			OrderID: "SO001",
			Status:  invoicing.SubmissionSuccess,
			Message: "ok",
		}
		err := repo.Upsert(context.Background(), record)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), record.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSubmissionLogRepository_Append(t *testing.T) {
	repo, mock, mockDB := newMockSubmissionLogRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`INSERT INTO "submission_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	err := repo.Append(context.Background(), &invoicing.SubmissionLog{
		OrderID:    "SO001",
		Status:     invoicing.SubmissionSuccess,
		RetryCount: 3,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSubmissionLogRepository_ListByOrder(t *testing.T) {
	repo, mock, mockDB := newMockSubmissionLogRepository(t)
	defer mockDB.Close()

	now := time.Now()
	rows := logRows().
		AddRow(9, "SO001", invoicing.SubmissionSuccess, "ok", "guid-2", "", 1, now, now).
		AddRow(4, "SO001", invoicing.SubmissionFailed, "boom", "", "", 0, now, now)

	mock.ExpectQuery(`SELECT \* FROM "submission_logs" WHERE order_id = \$1 ORDER BY id DESC`).
		WithArgs("SO001").
		WillReturnRows(rows)

	logs, err := repo.ListByOrder(context.Background(), "SO001")

	assert.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Succeeded())
	assert.False(t, logs[1].Succeeded())
	assert.NoError(t, mock.ExpectationsWereMet())
}
