package parser

import (
	"github.com/brfin/caixa-api/internal/document"
)

// The receivables ledger wraps long entity names, phones and responsible
// parties onto continuation rows with an empty leading cell. Logical entries
// are therefore rebuilt through a per-table accumulator before mapping; a
// complete entry spans at least 16 cells.
const receivablesMinWidth = 16

// Continuation rows narrower than this carry no mergeable cells.
const continuationMinWidth = 5

// ParseReceivables extracts entries from the internal receivables ledger,
// merging wrapped rows into their logical entry. Entries without an entity
// name or a parseable due date are discarded.
func ParseReceivables(pages []document.Page, sourceFile string) []LedgerEntry {
	var entries []LedgerEntry

	for _, page := range pages {
		for _, table := range page.Tables {
			var pending *receivableAccumulator

			for _, row := range table.Rows {
				if len(row) == 0 || CleanText(row[0]) == ledgerHeaderCell {
					continue
				}

				if CleanText(row[0]) != "" {
					// New logical entry: close out the one in progress.
					if pending != nil {
						if entry, ok := pending.finalize(sourceFile); ok {
							entries = append(entries, entry)
						}
					}
					pending = newReceivableAccumulator(row)
					continue
				}

				if pending != nil && len(row) >= continuationMinWidth {
					pending.absorb(row)
				}
			}

			if pending != nil {
				if entry, ok := pending.finalize(sourceFile); ok {
					entries = append(entries, entry)
				}
			}
		}
	}

	return entries
}

// receivableAccumulator buffers the cells of one in-progress logical entry.
// Its only transitions are absorb (merge a continuation row) and finalize
// (validate and map); the caller resets it by replacement.
type receivableAccumulator struct {
	cells []string
}

func newReceivableAccumulator(row []string) *receivableAccumulator {
	cells := make([]string, len(row))
	copy(cells, row)
	return &receivableAccumulator{cells: cells}
}

// absorb appends the wrapping columns of a continuation row: entity name (1),
// phone (3) and financial responsible (4). All other cells stay as first seen.
func (a *receivableAccumulator) absorb(row []string) {
	if len(a.cells) < continuationMinWidth {
		return
	}
	for _, col := range []int{1, 3, 4} {
		a.cells[col] = CleanText(a.cells[col]) + " " + CleanText(row[col])
	}
}

// finalize maps the buffered cells onto a LedgerEntry. ok is false when the
// buffer is too narrow, has no entity name or has no parseable due date;
// such buffers are dropped without error.
func (a *receivableAccumulator) finalize(sourceFile string) (LedgerEntry, bool) {
	if len(a.cells) < receivablesMinWidth {
		return LedgerEntry{}, false
	}

	entry := LedgerEntry{
		Category:             CleanText(a.cells[0]),
		EntityName:           CleanText(a.cells[1]),
		EntityType:           CleanText(a.cells[2]),
		Phone:                CleanText(a.cells[3]),
		FinancialResponsible: CleanText(a.cells[4]),
		Installment:          CleanText(a.cells[5]),
		IssueDate:            datePtr(a.cells[6]),
		DueDate:              datePtr(a.cells[7]),
		FullAmount:           amountPtr(a.cells[8]),
		DiscountAmount:       amountPtr(a.cells[9]),
		UpdatedAmount:        amountPtr(a.cells[10]),
		PaidAmount:           amountPtr(a.cells[11]),
		Notes:                CleanText(a.cells[12]),
		Status:               CleanText(a.cells[13]),
		ContractStatus:       CleanText(a.cells[14]),
		SourceFile:           sourceFile,
	}

	if entry.EntityName == "" || entry.DueDate == nil {
		return LedgerEntry{}, false
	}
	return entry, true
}
