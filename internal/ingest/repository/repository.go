// Package repository persists extracted records and the ingestion log trail.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brfin/caixa-api/internal/ingest/parser"
)

// Log types attached to ingestion log lines. They mirror what the frontend
// log console renders.
const (
	LogInfo    = "info"
	LogServer  = "server"
	LogSuccess = "success"
	LogError   = "error"
)

// IngestionLog is one line of a job's processing trail.
type IngestionLog struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	LogType   string
	Message   string
	CreatedAt time.Time
}

// StoredBankTransaction is a persisted bank movement as read back for
// exports and reports.
type StoredBankTransaction struct {
	ID              uuid.UUID
	TransactionDate *time.Time
	PostingDate     *time.Time
	Type            string
	Amount          decimal.Decimal
	Description     string
	SourceFile      string
}

// IngestRepository stores extracted records and job logs. Record inserts are
// atomic per batch: either every record of a document lands or none do.
type IngestRepository interface {
	InsertBankTransactions(ctx context.Context, records []parser.BankTransaction) (int, error)
	InsertPayments(ctx context.Context, entries []parser.LedgerEntry) (int, error)
	InsertReceivables(ctx context.Context, entries []parser.LedgerEntry) (int, error)

	InsertLog(ctx context.Context, jobID uuid.UUID, logType, message string) error
	ListLogs(ctx context.Context, jobID uuid.UUID) ([]IngestionLog, error)

	// ListBankTransactions returns movements with a transaction date inside
	// [start, end], oldest first.
	ListBankTransactions(ctx context.Context, start, end time.Time) ([]StoredBankTransaction, error)
}
