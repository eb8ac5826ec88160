package parser

import (
	"github.com/brfin/caixa-api/internal/document"
)

// Column layout of the tabular statement format: every well-formed movement
// row has exactly 8 cells, the first of which is the posting date.
const bankTableWidth = 8

// ParseBankTables extracts transactions from the tabular bank statement
// layout. Rows that do not have exactly 8 cells or whose first cell is not a
// date are table noise (headers, totals, spacers) and are skipped silently.
func ParseBankTables(pages []document.Page, sourceFile string) []BankTransaction {
	var transactions []BankTransaction

	for _, page := range pages {
		for _, table := range page.Tables {
			for _, row := range table.Rows {
				if len(row) != bankTableWidth || !IsDateLike(row[0]) {
					continue
				}

				postingDate := CleanText(row[0])
				movementDate := CleanText(row[1])
				rawValue := CleanText(row[6])
				rawBalance := CleanText(row[7])

				// The movement date column is blank on some rows; the
				// posting date is the observed stand-in.
				if movementDate == "" {
					movementDate = postingDate
				}

				polarity, amountText := classifyMarkedValue(rawValue)

				transactions = append(transactions, BankTransaction{
					TransactionDate: datePtr(movementDate),
					PostingDate:     datePtr(postingDate),
					Type:            polarity,
					Amount:          amountPtr(amountText),
					Description:     CleanText(row[4]),
					RawValueText:    &rawValue,
					RawBalanceText:  &rawBalance,
					SourceFile:      sourceFile,
					Extra: map[string]string{
						"lote":          CleanText(row[3]),
						"document":      CleanText(row[5]),
						"agency_origin": CleanText(row[2]),
					},
				})
			}
		}
	}

	return transactions
}
