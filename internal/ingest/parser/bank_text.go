package parser

import (
	"regexp"

	"github.com/brfin/caixa-api/internal/document"
)

// Anchors bounding the movement band on each page of the text statement
// layout. Text above "Lançamentos" and below either footer anchor is
// boilerplate (headers, future-dated items, disclaimers) that would otherwise
// produce false matches.
const (
	anchorHeader  = "Lançamentos"
	anchorFooter1 = "Informações Adicionais"
	anchorFooter2 = "Lançamentos Futuros"

	defaultCropTop   = 50.0
	footerCropMargin = 5.0
)

// One movement line: date, lot, document number, free-form history and a
// value token with a parenthesized sign. The history may wrap onto the next
// physical line, hence the s flag.
var bankLineRe = regexp.MustCompile(
	`(?ms)^(\d{2}/\d{2}/\d{4})\s+` + // 1: date
		`(\d*)\s+` + // 2: lot
		`([\d.]*)\s+` + // 3: document
		`(.*?)\s+` + // 4: history (non-greedy)
		`([\d.,]+\s\([+-]\))$`, // 5: value
)

// ParseBankText extracts transactions from the text-based bank statement
// layout. Each page is cropped to the band between the header and footer
// anchors before matching; pages without a band are skipped.
func ParseBankText(pages []document.Page, sourceFile string) []BankTransaction {
	var transactions []BankTransaction

	for _, page := range pages {
		text, ok := movementBand(&page)
		if !ok {
			continue
		}

		for _, match := range bankLineRe.FindAllStringSubmatch(text, -1) {
			date := CleanText(match[1])
			rawValue := CleanText(match[5])

			polarity, amountText := classifySignedValue(rawValue)

			// This layout reports a single date per movement.
			transactions = append(transactions, BankTransaction{
				TransactionDate: datePtr(date),
				PostingDate:     datePtr(date),
				Type:            polarity,
				Amount:          amountPtr(amountText),
				Description:     CleanText(match[4]),
				RawValueText:    &rawValue,
				RawBalanceText:  nil,
				SourceFile:      sourceFile,
				Extra: map[string]string{
					"lote":     CleanText(match[2]),
					"document": CleanText(match[3]),
				},
			})
		}
	}

	return transactions
}

// movementBand computes the vertical crop window for a page and returns the
// text inside it. ok is false when the window is empty or inverted.
func movementBand(page *document.Page) (string, bool) {
	top := defaultCropTop
	if header, ok := page.Search(anchorHeader); ok {
		top = header.Bottom
	}

	bottom := page.Height
	if footer, ok := page.Search(anchorFooter1); ok && footer.Top < bottom {
		bottom = footer.Top
	}
	if footer, ok := page.Search(anchorFooter2); ok && footer.Top < bottom {
		bottom = footer.Top
	}
	bottom -= footerCropMargin

	if top >= bottom {
		return "", false
	}

	text := page.TextBetween(top, bottom)
	if text == "" {
		return "", false
	}
	return text, true
}
