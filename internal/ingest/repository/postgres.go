package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/brfin/caixa-api/internal/ingest/parser"
)

// DB is the subset of pgxpool.Pool the repository needs. Keeping it narrow
// lets tests substitute a pgxmock pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresIngestRepository implements IngestRepository using PostgreSQL
type PostgresIngestRepository struct {
	db DB
}

// NewPostgresIngestRepository creates a new PostgreSQL ingest repository
func NewPostgresIngestRepository(db DB) *PostgresIngestRepository {
	return &PostgresIngestRepository{db: db}
}

// InsertBankTransactions inserts a parsed statement's transactions in one
// transaction. Unparseable amounts are stored as zero; the raw token column
// keeps the source text either way.
func (r *PostgresIngestRepository) InsertBankTransactions(ctx context.Context, records []parser.BankTransaction) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO bank_transactions (transaction_date, posting_date, type, amount,
			raw_history_text, raw_value_text, raw_balance_text, source_file_name, raw_json_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, rec := range records {
		amount := "0"
		if rec.Amount != nil {
			amount = rec.Amount.String()
		}

		var extra []byte
		if len(rec.Extra) > 0 {
			extra, err = json.Marshal(rec.Extra)
			if err != nil {
				return 0, fmt.Errorf("failed to marshal extra fields: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, query,
			rec.TransactionDate,
			rec.PostingDate,
			string(rec.Type),
			amount,
			rec.Description,
			rec.RawValueText,
			rec.RawBalanceText,
			rec.SourceFile,
			extra,
		); err != nil {
			return 0, fmt.Errorf("failed to insert bank transaction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit bank transactions: %w", err)
	}
	return len(records), nil
}

// InsertPayments inserts parsed payments ledger entries in one transaction.
func (r *PostgresIngestRepository) InsertPayments(ctx context.Context, entries []parser.LedgerEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO internal_payments (category, entity_name, entity_type, installment,
			issue_date, due_date, full_amount, discount_amount, updated_amount, paid_amount,
			notes, status, source_file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for _, e := range entries {
		if _, err := tx.Exec(ctx, query,
			e.Category,
			e.EntityName,
			e.EntityType,
			e.Installment,
			e.IssueDate,
			e.DueDate,
			decimalArg(e.FullAmount),
			decimalArg(e.DiscountAmount),
			decimalArg(e.UpdatedAmount),
			decimalArg(e.PaidAmount),
			e.Notes,
			e.Status,
			e.SourceFile,
		); err != nil {
			return 0, fmt.Errorf("failed to insert payment entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit payments: %w", err)
	}
	return len(entries), nil
}

// InsertReceivables inserts parsed receivables ledger entries in one transaction.
func (r *PostgresIngestRepository) InsertReceivables(ctx context.Context, entries []parser.LedgerEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO internal_receivables (category, entity_name, entity_type, phone,
			financial_responsible, installment, issue_date, due_date, full_amount,
			discount_amount, updated_amount, paid_amount, notes, status, contract_status,
			source_file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	for _, e := range entries {
		if _, err := tx.Exec(ctx, query,
			e.Category,
			e.EntityName,
			e.EntityType,
			e.Phone,
			e.FinancialResponsible,
			e.Installment,
			e.IssueDate,
			e.DueDate,
			decimalArg(e.FullAmount),
			decimalArg(e.DiscountAmount),
			decimalArg(e.UpdatedAmount),
			decimalArg(e.PaidAmount),
			e.Notes,
			e.Status,
			e.ContractStatus,
			e.SourceFile,
		); err != nil {
			return 0, fmt.Errorf("failed to insert receivable entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit receivables: %w", err)
	}
	return len(entries), nil
}

// InsertLog appends one line to a job's log trail.
func (r *PostgresIngestRepository) InsertLog(ctx context.Context, jobID uuid.UUID, logType, message string) error {
	query := `INSERT INTO ingestion_logs (job_id, log_type, message) VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, jobID, logType, message); err != nil {
		return fmt.Errorf("failed to insert ingestion log: %w", err)
	}
	return nil
}

// ListLogs returns a job's log trail in write order.
func (r *PostgresIngestRepository) ListLogs(ctx context.Context, jobID uuid.UUID) ([]IngestionLog, error) {
	query := `
		SELECT id, job_id, log_type, message, created_at
		FROM ingestion_logs
		WHERE job_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion logs: %w", err)
	}
	defer rows.Close()

	var logs []IngestionLog
	for rows.Next() {
		var l IngestionLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.LogType, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingestion logs: %w", err)
	}

	return logs, nil
}

// ListBankTransactions returns movements dated inside [start, end], oldest
// first.
func (r *PostgresIngestRepository) ListBankTransactions(ctx context.Context, start, end time.Time) ([]StoredBankTransaction, error) {
	query := `
		SELECT id, transaction_date, posting_date, type, amount::text, raw_history_text, source_file_name
		FROM bank_transactions
		WHERE transaction_date >= $1 AND transaction_date <= $2
		ORDER BY transaction_date ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	var result []StoredBankTransaction
	for rows.Next() {
		var tx StoredBankTransaction
		var amount string
		if err := rows.Scan(&tx.ID, &tx.TransactionDate, &tx.PostingDate, &tx.Type,
			&amount, &tx.Description, &tx.SourceFile); err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bank transactions: %w", err)
	}

	return result, nil
}

// decimalArg maps an optional decimal onto a nullable numeric parameter.
// Values travel as their canonical string form so the database casts them
// exactly, without a float round-trip.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

var _ IngestRepository = (*PostgresIngestRepository)(nil)
