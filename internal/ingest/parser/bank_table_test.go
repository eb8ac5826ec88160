package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brfin/caixa-api/internal/document"
)

func tablePages(rows ...[][]string) []document.Page {
	pages := make([]document.Page, 0, len(rows))
	for _, tableRows := range rows {
		pages = append(pages, document.Page{
			Tables: []document.Table{{Rows: tableRows}},
		})
	}
	return pages
}

func TestParseBankTables(t *testing.T) {
	t.Run("maps a well-formed credit row", func(t *testing.T) {
		pages := tablePages([][]string{
			{"01/03/2024", "01/03/2024", "A", "L1", "PIX recebido", "D1", "150,00 C", "9.000,00"},
		})

		got := ParseBankTables(pages, "extrato-marco.pdf")
		require.Len(t, got, 1)

		tx := got[0]
		assert.Equal(t, Credit, tx.Type)
		require.NotNil(t, tx.Amount)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("150.00")))
		assert.Equal(t, "PIX recebido", tx.Description)
		require.NotNil(t, tx.TransactionDate)
		assert.Equal(t, "01/03/2024", tx.TransactionDate.Format("02/01/2006"))
		require.NotNil(t, tx.RawValueText)
		assert.Equal(t, "150,00 C", *tx.RawValueText)
		require.NotNil(t, tx.RawBalanceText)
		assert.Equal(t, "9.000,00", *tx.RawBalanceText)
		assert.Equal(t, "extrato-marco.pdf", tx.SourceFile)
		assert.Equal(t, map[string]string{
			"lote":          "L1",
			"document":      "D1",
			"agency_origin": "A",
		}, tx.Extra)
	})

	t.Run("classifies debits", func(t *testing.T) {
		pages := tablePages([][]string{
			{"02/03/2024", "02/03/2024", "A", "L2", "Tarifa pacote", "D2", "32,90 D", "8.967,10"},
		})

		got := ParseBankTables(pages, "extrato.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, Debit, got[0].Type)
		assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("32.90")))
	})

	t.Run("falls back to posting date when movement date is blank", func(t *testing.T) {
		pages := tablePages([][]string{
			{"01/03/2024", "", "A", "L1", "Saque", "D1", "50,00 D", "100,00"},
		})

		got := ParseBankTables(pages, "extrato.pdf")
		require.Len(t, got, 1)
		require.NotNil(t, got[0].TransactionDate)
		assert.Equal(t, *got[0].PostingDate, *got[0].TransactionDate)
	})

	t.Run("skips rows of the wrong width and non-date rows", func(t *testing.T) {
		pages := tablePages([][]string{
			{"Data", "Mov", "Ag", "Lote", "Histórico", "Doc", "Valor", "Saldo"},
			{"01/03/2024", "01/03/2024", "A", "L1", "PIX", "D1", "10,00 C"}, // 7 cells
			{"Saldo Anterior", "", "", "", "", "", "", "9.000,00"},
			{"01/03/2024", "01/03/2024", "A", "L1", "PIX", "D1", "10,00 C", "9.010,00"},
		})

		got := ParseBankTables(pages, "extrato.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "PIX", got[0].Description)
	})

	t.Run("keeps the raw token when the value fails to parse", func(t *testing.T) {
		pages := tablePages([][]string{
			{"01/03/2024", "01/03/2024", "A", "L1", "PIX", "D1", "?? C", "9.000,00"},
		})

		got := ParseBankTables(pages, "extrato.pdf")
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Amount)
		require.NotNil(t, got[0].RawValueText)
		assert.Equal(t, "?? C", *got[0].RawValueText)
	})

	t.Run("preserves page and table order", func(t *testing.T) {
		pages := tablePages(
			[][]string{
				{"01/03/2024", "01/03/2024", "A", "L1", "primeiro", "D1", "1,00 C", "1,00"},
			},
			[][]string{
				{"02/03/2024", "02/03/2024", "A", "L2", "segundo", "D2", "2,00 C", "3,00"},
				{"03/03/2024", "03/03/2024", "A", "L3", "terceiro", "D3", "3,00 D", "0,00"},
			},
		)

		got := ParseBankTables(pages, "extrato.pdf")
		require.Len(t, got, 3)
		assert.Equal(t, "primeiro", got[0].Description)
		assert.Equal(t, "segundo", got[1].Description)
		assert.Equal(t, "terceiro", got[2].Description)
	})

	t.Run("is deterministic across runs", func(t *testing.T) {
		pages := tablePages([][]string{
			{"01/03/2024", "01/03/2024", "A", "L1", "PIX", "D1", "10,00 C", "9.010,00"},
		})

		first := ParseBankTables(pages, "extrato.pdf")
		second := ParseBankTables(pages, "extrato.pdf")
		assert.Equal(t, first, second)
	})

	t.Run("returns nothing for empty pages", func(t *testing.T) {
		assert.Empty(t, ParseBankTables(nil, "extrato.pdf"))
		assert.Empty(t, ParseBankTables([]document.Page{{}}, "extrato.pdf"))
	})
}
