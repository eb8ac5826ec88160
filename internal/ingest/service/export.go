package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// exportRow is the CSV projection of a stored bank transaction.
type exportRow struct {
	TransactionDate string `csv:"transaction_date"`
	PostingDate     string `csv:"posting_date"`
	Type            string `csv:"type"`
	Amount          string `csv:"amount"`
	Description     string `csv:"description"`
	SourceFile      string `csv:"source_file"`
}

// ExportBankTransactionsCSV writes the bank transactions dated inside
// [start, end] to w as CSV, oldest first. Unknown dates export as empty
// columns.
func (s *IngestService) ExportBankTransactionsCSV(ctx context.Context, w io.Writer, start, end time.Time) (int, error) {
	transactions, err := s.repo.ListBankTransactions(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions for export: %w", err)
	}

	rows := make([]exportRow, 0, len(transactions))
	for _, tx := range transactions {
		row := exportRow{
			Type:        tx.Type,
			Amount:      tx.Amount.String(),
			Description: tx.Description,
			SourceFile:  tx.SourceFile,
		}
		if tx.TransactionDate != nil {
			row.TransactionDate = tx.TransactionDate.Format("2006-01-02")
		}
		if tx.PostingDate != nil {
			row.PostingDate = tx.PostingDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return 0, fmt.Errorf("failed to write CSV export: %w", err)
	}
	return len(rows), nil
}
