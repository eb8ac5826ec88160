package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Store is the persistence surface the report service needs.
type Store interface {
	ComputeMonthlyTotals(ctx context.Context, year, month int) (MonthlySummary, error)
	UpsertSummary(ctx context.Context, s MonthlySummary) error
	GetSummary(ctx context.Context, year, month int) (MonthlySummary, bool, error)
	MonthsWithData(ctx context.Context) ([]YearMonth, error)
	ListSettledReceivables(ctx context.Context, year, month int) ([]LedgerLine, error)
	ListSettledPayments(ctx context.Context, year, month int) ([]LedgerLine, error)
	ListBankMovements(ctx context.Context, year, month int) ([]BankLine, error)
}

// DRE is a month's result statement with the bank reconciliation attached.
// The discrepancies compare each side of the ledger with the bank: received
// minus revenue, paid minus expenses. Gap nets the two; any of them far from
// zero means movements are missing on one side or the other.
type DRE struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetResult     decimal.Decimal `json:"net_result"`
	BankReceived  decimal.Decimal `json:"bank_received"`
	BankPaid      decimal.Decimal `json:"bank_paid"`
	BankNet       decimal.Decimal `json:"bank_net"`

	RevenueDiscrepancy decimal.Decimal `json:"revenue_discrepancy"`
	ExpenseDiscrepancy decimal.Decimal `json:"expense_discrepancy"`
	Gap                decimal.Decimal `json:"gap"`

	RefreshedAt time.Time `json:"refreshed_at"`

	// Backing lists for the totals above.
	Revenues      []LedgerLine `json:"revenues"`
	Expenses      []LedgerLine `json:"expenses"`
	BankMovements []BankLine   `json:"bank_movements"`
}

// Service computes DRE reports and keeps the stored snapshots fresh.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new report service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// DRE computes the month live and writes the snapshot through, so ad-hoc
// requests and the nightly refresh converge on the same numbers.
func (s *Service) DRE(ctx context.Context, year, month int) (DRE, error) {
	summary, err := s.store.ComputeMonthlyTotals(ctx, year, month)
	if err != nil {
		return DRE{}, err
	}

	if err := s.store.UpsertSummary(ctx, summary); err != nil {
		// The snapshot is a cache; serving the live numbers still works.
		s.logger.Warn("failed to store monthly summary",
			slog.Int("year", year), slog.Int("month", month), slog.Any("error", err))
	}

	dre := buildDRE(summary)

	if dre.Revenues, err = s.store.ListSettledReceivables(ctx, year, month); err != nil {
		return DRE{}, err
	}
	if dre.Expenses, err = s.store.ListSettledPayments(ctx, year, month); err != nil {
		return DRE{}, err
	}
	if dre.BankMovements, err = s.store.ListBankMovements(ctx, year, month); err != nil {
		return DRE{}, err
	}

	return dre, nil
}

func buildDRE(summary MonthlySummary) DRE {
	net := summary.TotalRevenue.Sub(summary.TotalExpenses)
	bankNet := summary.BankReceived.Sub(summary.BankPaid)
	return DRE{
		Year:          summary.Year,
		Month:         summary.Month,
		TotalRevenue:  summary.TotalRevenue,
		TotalExpenses: summary.TotalExpenses,
		NetResult:     net,
		BankReceived:  summary.BankReceived,
		BankPaid:      summary.BankPaid,
		BankNet:       bankNet,

		RevenueDiscrepancy: summary.BankReceived.Sub(summary.TotalRevenue),
		ExpenseDiscrepancy: summary.BankPaid.Sub(summary.TotalExpenses),
		Gap:                net.Sub(bankNet),

		RefreshedAt: summary.RefreshedAt,
	}
}

// RefreshAll recomputes and stores every month that has data. It returns the
// number of months refreshed; a failing month aborts the run.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	months, err := s.store.MonthsWithData(ctx)
	if err != nil {
		return 0, err
	}

	for i, ym := range months {
		summary, err := s.store.ComputeMonthlyTotals(ctx, ym.Year, ym.Month)
		if err != nil {
			return i, fmt.Errorf("failed to refresh %04d-%02d: %w", ym.Year, ym.Month, err)
		}
		if err := s.store.UpsertSummary(ctx, summary); err != nil {
			return i, fmt.Errorf("failed to store %04d-%02d: %w", ym.Year, ym.Month, err)
		}
	}

	s.logger.Info("monthly summaries refreshed", slog.Int("months", len(months)))
	return len(months), nil
}

// StartScheduler refreshes all summaries on the given cron schedule. The
// returned cron is already running; stop it on shutdown.
func (s *Service) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.RefreshAll(ctx); err != nil {
			s.logger.Error("scheduled summary refresh failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid report refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
