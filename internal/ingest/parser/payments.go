package parser

import (
	"strings"

	"github.com/brfin/caixa-api/internal/document"
)

// The payments ledger prints two logical fields per cell in columns 3 and 4:
// "installment issue-date" and "due-date full-amount". Every well-formed row
// has exactly 11 cells.
const paymentsRowWidth = 11

// ledgerHeaderCell marks a ledger header row; both internal ledgers start
// their header with this literal.
const ledgerHeaderCell = "Categoria"

// ParsePayments extracts entries from the internal payments ledger. Header
// rows and rows of the wrong width are skipped; compound cells that fail to
// split leave the affected fields unknown rather than dropping the row.
func ParsePayments(pages []document.Page, sourceFile string) []LedgerEntry {
	var entries []LedgerEntry

	for _, page := range pages {
		for _, table := range page.Tables {
			for _, row := range table.Rows {
				if len(row) == 0 || CleanText(row[0]) == ledgerHeaderCell {
					continue
				}
				if len(row) != paymentsRowWidth {
					continue
				}

				installment, issueDate := splitCompound(row[3], true)
				dueDate, fullAmount := splitCompound(row[4], false)

				entries = append(entries, LedgerEntry{
					Category:       CleanText(row[0]),
					EntityName:     CleanText(row[1]),
					EntityType:     CleanText(row[2]),
					Installment:    installment,
					IssueDate:      datePtr(issueDate),
					DueDate:        datePtr(dueDate),
					FullAmount:     amountPtr(fullAmount),
					DiscountAmount: amountPtr(CleanText(row[5])),
					UpdatedAmount:  amountPtr(CleanText(row[6])),
					PaidAmount:     amountPtr(CleanText(row[7])),
					Notes:          CleanText(row[8]),
					Status:         CleanText(row[9]),
					SourceFile:     sourceFile,
				})
			}
		}
	}

	return entries
}

// splitCompound breaks a two-value cell on internal whitespace. lastFirst
// selects whether the pair is returned as (last, first) or (first, last);
// an empty cell yields two empty values.
func splitCompound(cell string, lastFirst bool) (string, string) {
	parts := strings.Fields(CleanText(cell))
	if len(parts) == 0 {
		return "", ""
	}
	if lastFirst {
		return parts[len(parts)-1], parts[0]
	}
	return parts[0], parts[len(parts)-1]
}
