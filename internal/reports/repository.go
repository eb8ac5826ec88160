// Package reports builds the monthly DRE (demonstrativo de resultado) from
// the internal ledgers and reconciles it against the bank statements.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the slice of the pgx pool the report queries need.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// paidStatus marks settled ledger rows. The internal system prints the same
// literal on both ledgers.
const paidStatus = "Paga"

// MonthlySummary is one month of ledger totals and bank movement.
type MonthlySummary struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	BankReceived  decimal.Decimal `json:"bank_received"`
	BankPaid      decimal.Decimal `json:"bank_paid"`
	RefreshedAt   time.Time       `json:"refreshed_at"`
}

// YearMonth identifies one calendar month with data.
type YearMonth struct {
	Year  int
	Month int
}

// LedgerLine is one settled ledger row backing a monthly total.
type LedgerLine struct {
	Category   string          `json:"category"`
	EntityName string          `json:"entity_name"`
	DueDate    time.Time       `json:"due_date"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// BankLine is one bank movement backing a monthly total.
type BankLine struct {
	TransactionDate time.Time       `json:"transaction_date"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
}

// Repository runs the report aggregations against PostgreSQL.
type Repository struct {
	db DB
}

// NewRepository creates a new report repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// monthRange returns the half-open [first day, first day of next month) window.
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ComputeMonthlyTotals aggregates one month live from the ledger and bank
// tables. Ledger totals count settled rows by due date; bank totals count
// movements by transaction date.
func (r *Repository) ComputeMonthlyTotals(ctx context.Context, year, month int) (MonthlySummary, error) {
	start, end := monthRange(year, month)
	summary := MonthlySummary{Year: year, Month: month}

	var revenue, expenses string

	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(paid_amount), 0)::text
		FROM internal_receivables
		WHERE status = $1 AND due_date >= $2 AND due_date < $3`,
		paidStatus, start, end,
	).Scan(&revenue)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("failed to sum receivables: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(paid_amount), 0)::text
		FROM internal_payments
		WHERE status = $1 AND due_date >= $2 AND due_date < $3`,
		paidStatus, start, end,
	).Scan(&expenses)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("failed to sum payments: %w", err)
	}

	var received, paid string
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'credit' THEN amount END), 0)::text,
			COALESCE(SUM(CASE WHEN type = 'debit' THEN amount END), 0)::text
		FROM bank_transactions
		WHERE transaction_date >= $1 AND transaction_date < $2`,
		start, end,
	).Scan(&received, &paid)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("failed to sum bank movements: %w", err)
	}

	if summary.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return MonthlySummary{}, fmt.Errorf("invalid revenue total %q: %w", revenue, err)
	}
	if summary.TotalExpenses, err = decimal.NewFromString(expenses); err != nil {
		return MonthlySummary{}, fmt.Errorf("invalid expense total %q: %w", expenses, err)
	}
	if summary.BankReceived, err = decimal.NewFromString(received); err != nil {
		return MonthlySummary{}, fmt.Errorf("invalid bank received total %q: %w", received, err)
	}
	if summary.BankPaid, err = decimal.NewFromString(paid); err != nil {
		return MonthlySummary{}, fmt.Errorf("invalid bank paid total %q: %w", paid, err)
	}

	summary.RefreshedAt = time.Now()
	return summary, nil
}

// UpsertSummary stores a month's totals, replacing any previous snapshot.
func (r *Repository) UpsertSummary(ctx context.Context, s MonthlySummary) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO monthly_summaries (year, month, total_revenue, total_expenses, bank_received, bank_paid, refreshed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (year, month) DO UPDATE SET
			total_revenue = EXCLUDED.total_revenue,
			total_expenses = EXCLUDED.total_expenses,
			bank_received = EXCLUDED.bank_received,
			bank_paid = EXCLUDED.bank_paid,
			refreshed_at = NOW()`,
		s.Year, s.Month,
		s.TotalRevenue.String(), s.TotalExpenses.String(),
		s.BankReceived.String(), s.BankPaid.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly summary: %w", err)
	}
	return nil
}

// GetSummary loads a stored snapshot. found is false when the month was
// never refreshed.
func (r *Repository) GetSummary(ctx context.Context, year, month int) (MonthlySummary, bool, error) {
	var (
		s                               MonthlySummary
		revenue, expenses, received, paid string
	)

	err := r.db.QueryRow(ctx, `
		SELECT year, month, total_revenue::text, total_expenses::text, bank_received::text, bank_paid::text, refreshed_at
		FROM monthly_summaries
		WHERE year = $1 AND month = $2`,
		year, month,
	).Scan(&s.Year, &s.Month, &revenue, &expenses, &received, &paid, &s.RefreshedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return MonthlySummary{}, false, nil
	}
	if err != nil {
		return MonthlySummary{}, false, fmt.Errorf("failed to load monthly summary: %w", err)
	}

	if s.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return MonthlySummary{}, false, fmt.Errorf("invalid stored revenue %q: %w", revenue, err)
	}
	if s.TotalExpenses, err = decimal.NewFromString(expenses); err != nil {
		return MonthlySummary{}, false, fmt.Errorf("invalid stored expenses %q: %w", expenses, err)
	}
	if s.BankReceived, err = decimal.NewFromString(received); err != nil {
		return MonthlySummary{}, false, fmt.Errorf("invalid stored bank received %q: %w", received, err)
	}
	if s.BankPaid, err = decimal.NewFromString(paid); err != nil {
		return MonthlySummary{}, false, fmt.Errorf("invalid stored bank paid %q: %w", paid, err)
	}

	return s, true, nil
}

// ledger tables with a monthly DRE side. Queries interpolate the table name,
// so it must come from this list.
var ledgerTables = map[string]bool{
	"internal_receivables": true,
	"internal_payments":    true,
}

func (r *Repository) listSettled(ctx context.Context, table string, year, month int) ([]LedgerLine, error) {
	if !ledgerTables[table] {
		return nil, fmt.Errorf("unknown ledger table %q", table)
	}

	start, end := monthRange(year, month)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT category, entity_name, due_date, COALESCE(paid_amount, 0)::text
		FROM %s
		WHERE status = $1 AND due_date >= $2 AND due_date < $3
		ORDER BY due_date, entity_name`, table),
		paidStatus, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled %s: %w", table, err)
	}
	defer rows.Close()

	var lines []LedgerLine
	for rows.Next() {
		var (
			line LedgerLine
			paid string
		)
		if err := rows.Scan(&line.Category, &line.EntityName, &line.DueDate, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		if line.PaidAmount, err = decimal.NewFromString(paid); err != nil {
			return nil, fmt.Errorf("invalid paid amount %q: %w", paid, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger lines: %w", err)
	}

	return lines, nil
}

// ListSettledReceivables returns the settled receivable rows due in the month.
func (r *Repository) ListSettledReceivables(ctx context.Context, year, month int) ([]LedgerLine, error) {
	return r.listSettled(ctx, "internal_receivables", year, month)
}

// ListSettledPayments returns the settled payment rows due in the month.
func (r *Repository) ListSettledPayments(ctx context.Context, year, month int) ([]LedgerLine, error) {
	return r.listSettled(ctx, "internal_payments", year, month)
}

// ListBankMovements returns the month's dated bank movements, oldest first.
func (r *Repository) ListBankMovements(ctx context.Context, year, month int) ([]BankLine, error) {
	start, end := monthRange(year, month)
	rows, err := r.db.Query(ctx, `
		SELECT transaction_date, type, amount::text, raw_history_text
		FROM bank_transactions
		WHERE transaction_date >= $1 AND transaction_date < $2
		ORDER BY transaction_date, created_at`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank movements: %w", err)
	}
	defer rows.Close()

	var lines []BankLine
	for rows.Next() {
		var (
			line   BankLine
			amount string
		)
		if err := rows.Scan(&line.TransactionDate, &line.Type, &amount, &line.Description); err != nil {
			return nil, fmt.Errorf("failed to scan bank movement: %w", err)
		}
		if line.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid movement amount %q: %w", amount, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bank movements: %w", err)
	}

	return lines, nil
}

// MonthsWithData lists every calendar month that has at least one bank
// movement or dated ledger row, oldest first.
func (r *Repository) MonthsWithData(ctx context.Context) ([]YearMonth, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT year, month FROM (
			SELECT EXTRACT(YEAR FROM transaction_date)::int AS year, EXTRACT(MONTH FROM transaction_date)::int AS month
			FROM bank_transactions WHERE transaction_date IS NOT NULL
			UNION
			SELECT EXTRACT(YEAR FROM due_date)::int, EXTRACT(MONTH FROM due_date)::int
			FROM internal_payments WHERE due_date IS NOT NULL
			UNION
			SELECT EXTRACT(YEAR FROM due_date)::int, EXTRACT(MONTH FROM due_date)::int
			FROM internal_receivables WHERE due_date IS NOT NULL
		) months
		ORDER BY year, month`)
	if err != nil {
		return nil, fmt.Errorf("failed to list months with data: %w", err)
	}
	defer rows.Close()

	var months []YearMonth
	for rows.Next() {
		var ym YearMonth
		if err := rows.Scan(&ym.Year, &ym.Month); err != nil {
			return nil, fmt.Errorf("failed to scan month: %w", err)
		}
		months = append(months, ym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read months: %w", err)
	}

	return months, nil
}
