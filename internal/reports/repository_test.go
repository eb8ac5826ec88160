package reports

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMonthlyTotals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mock.ExpectQuery(`FROM internal_receivables`).
		WithArgs("Paga", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow("12500.00"))
	mock.ExpectQuery(`FROM internal_payments`).
		WithArgs("Paga", start, end).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow("8300.50"))
	mock.ExpectQuery(`FROM bank_transactions`).
		WithArgs(start, end).
		WillReturnRows(pgxmock.NewRows([]string{"received", "paid"}).AddRow("12000.00", "8000.00"))

	summary, err := repo.ComputeMonthlyTotals(context.Background(), 2025, 1)
	require.NoError(t, err)

	assert.Equal(t, 2025, summary.Year)
	assert.Equal(t, 1, summary.Month)
	assert.Equal(t, "12500.00", summary.TotalRevenue.String())
	assert.Equal(t, "8300.50", summary.TotalExpenses.String())
	assert.Equal(t, "12000.00", summary.BankReceived.String())
	assert.Equal(t, "8000.00", summary.BankPaid.String())
	assert.False(t, summary.RefreshedAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComputeMonthlyTotals_QueryFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(`FROM internal_receivables`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(assert.AnError)

	_, err = repo.ComputeMonthlyTotals(context.Background(), 2025, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to sum receivables")
}

func TestUpsertSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	summary := MonthlySummary{Year: 2025, Month: 3}
	summary.TotalRevenue = mustDecimal(t, "1000.00")
	summary.TotalExpenses = mustDecimal(t, "400.00")
	summary.BankReceived = mustDecimal(t, "950.00")
	summary.BankPaid = mustDecimal(t, "400.00")

	mock.ExpectExec(`INSERT INTO monthly_summaries`).
		WithArgs(2025, 3, "1000.00", "400.00", "950.00", "400.00").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertSummary(context.Background(), summary))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummary(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewRepository(mock)
		refreshed := time.Now()

		mock.ExpectQuery(`FROM monthly_summaries`).
			WithArgs(2025, 2).
			WillReturnRows(pgxmock.NewRows(
				[]string{"year", "month", "total_revenue", "total_expenses", "bank_received", "bank_paid", "refreshed_at"},
			).AddRow(2025, 2, "500.00", "200.00", "480.00", "210.00", refreshed))

		summary, found, err := repo.GetSummary(context.Background(), 2025, 2)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "500.00", summary.TotalRevenue.String())
		assert.Equal(t, "210.00", summary.BankPaid.String())
	})

	t.Run("missing month", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewRepository(mock)

		mock.ExpectQuery(`FROM monthly_summaries`).
			WithArgs(1999, 1).
			WillReturnRows(pgxmock.NewRows(
				[]string{"year", "month", "total_revenue", "total_expenses", "bank_received", "bank_paid", "refreshed_at"},
			))

		_, found, err := repo.GetSummary(context.Background(), 1999, 1)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestListSettledReceivables(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 0, 9)

	mock.ExpectQuery(`FROM internal_receivables`).
		WithArgs("Paga", start, start.AddDate(0, 1, 0)).
		WillReturnRows(pgxmock.NewRows([]string{"category", "entity_name", "due_date", "paid_amount"}).
			AddRow("Mensalidade", "Contrato 101", due, "1200.00"))

	lines, err := repo.ListSettledReceivables(context.Background(), 2025, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Contrato 101", lines[0].EntityName)
	assert.Equal(t, "1200.00", lines[0].PaidAmount.String())
}

func TestListBankMovements(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bank_transactions`).
		WithArgs(start, start.AddDate(0, 1, 0)).
		WillReturnRows(pgxmock.NewRows([]string{"transaction_date", "type", "amount", "raw_history_text"}).
			AddRow(start.AddDate(0, 0, 1), "debit", "350.75", "Tarifa bancária"))

	lines, err := repo.ListBankMovements(context.Background(), 2025, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "debit", lines[0].Type)
	assert.Equal(t, "350.75", lines[0].Amount.String())
}

func TestMonthsWithData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT DISTINCT year, month`).
		WillReturnRows(pgxmock.NewRows([]string{"year", "month"}).
			AddRow(2024, 12).
			AddRow(2025, 1))

	months, err := repo.MonthsWithData(context.Background())
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, YearMonth{Year: 2024, Month: 12}, months[0])
	assert.Equal(t, YearMonth{Year: 2025, Month: 1}, months[1])
}
