// Package parser reconstructs typed financial records from the semi-structured
// page content of scanned bank statements and internal ledgers. All extractors
// are total: malformed rows degrade to skipped rows or unknown fields, never
// to an error reaching the caller.
package parser

import (
	"time"

	"github.com/shopspring/decimal"
)

// Polarity classifies a monetary movement.
type Polarity string

const (
	Credit Polarity = "credit"
	Debit  Polarity = "debit"
)

// BankTransaction is one movement reconstructed from a bank statement.
// Nil date and amount fields mean the source token could not be parsed;
// the raw tokens are always retained for audit.
type BankTransaction struct {
	TransactionDate *time.Time
	PostingDate     *time.Time
	Type            Polarity
	Amount          *decimal.Decimal
	Description     string
	RawValueText    *string
	RawBalanceText  *string
	SourceFile      string
	Extra           map[string]string
}

// LedgerEntry is one row of the internal payments or receivables ledger.
// Phone, FinancialResponsible and ContractStatus are only populated for
// receivables.
type LedgerEntry struct {
	Category             string
	EntityName           string
	EntityType           string
	Phone                string
	FinancialResponsible string
	Installment          string
	IssueDate            *time.Time
	DueDate              *time.Time
	FullAmount           *decimal.Decimal
	DiscountAmount       *decimal.Decimal
	UpdatedAmount        *decimal.Decimal
	PaidAmount           *decimal.Decimal
	Notes                string
	Status               string
	ContractStatus       string
	SourceFile           string
}
