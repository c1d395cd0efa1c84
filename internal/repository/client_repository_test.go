package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

func TestClientRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "coach_id", "name", "phone", "email", "notes", "active", "balance_owed", "monthly_fee", "created_at", "updated_at"}).
		AddRow("client-1", "coach-1", "Anna", "600100200", nil, "", true, "150.00", nil, now, now)
	mock.ExpectQuery(`FROM clients cl WHERE cl.coach_id = \$1 AND cl.active = \$2 AND \(LOWER\(cl.name\) LIKE \$3 .* AND cl.balance_owed > 0 ORDER BY cl.balance_owed DESC LIMIT 50 OFFSET 0`).
		WithArgs("coach-1", true, "%ann%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clients cl`).
		WithArgs("coach-1", true, "%ann%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active, hasBalance := true, true
	clients, total, err := repo.List(context.Background(), models.ClientFilter{
		CoachID:    "coach-1",
		Search:     "Ann",
		Active:     &active,
		HasBalance: &hasBalance,
		SortBy:     "balance_owed",
		SortOrder:  "desc",
	})
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, 1, total)
	assert.True(t, clients[0].BalanceOwed.Equal(decimal.NewFromInt(150)))
	assert.False(t, clients[0].MonthlyFee.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectExec("INSERT INTO clients").WillReturnResult(sqlmock.NewResult(1, 1))

	client := &models.Client{CoachID: "coach-1", Name: "Anna", Active: true}
	require.NoError(t, repo.Create(context.Background(), client))
	assert.NotEmpty(t, client.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryOverdueSummary(t *testing.T) {
	db, mock, cleanup := newLedgerMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(balance_owed\), 0\) AS total, COUNT\(\*\) AS clients FROM clients WHERE coach_id = \$1 AND balance_owed > 0`).
		WithArgs("coach-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "clients"}).AddRow("250.50", 3))

	summary, err := repo.OverdueSummary(context.Background(), "coach-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Clients)
	assert.Equal(t, "250.5", summary.Total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
