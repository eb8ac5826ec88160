package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentsRow(category string) []string {
	return []string{
		category, "Fornecedor XYZ", "PJ",
		"15/10/2025 3/12", "10/11/2025 1.200,00",
		"0,00", "1.200,00", "1.200,00",
		"material de escritório", "Paga",
		"",
	}
}

func TestParsePayments(t *testing.T) {
	t.Run("maps a well-formed row with compound cells", func(t *testing.T) {
		pages := tablePages([][]string{paymentsRow("Despesas")})

		got := ParsePayments(pages, "novembro-pagamentos.pdf")
		require.Len(t, got, 1)

		entry := got[0]
		assert.Equal(t, "Despesas", entry.Category)
		assert.Equal(t, "Fornecedor XYZ", entry.EntityName)
		assert.Equal(t, "PJ", entry.EntityType)
		assert.Equal(t, "3/12", entry.Installment)
		require.NotNil(t, entry.IssueDate)
		assert.Equal(t, "15/10/2025", entry.IssueDate.Format("02/01/2006"))
		require.NotNil(t, entry.DueDate)
		assert.Equal(t, "10/11/2025", entry.DueDate.Format("02/01/2006"))
		require.NotNil(t, entry.FullAmount)
		assert.True(t, entry.FullAmount.Equal(decimal.RequireFromString("1200.00")))
		require.NotNil(t, entry.PaidAmount)
		assert.True(t, entry.PaidAmount.Equal(decimal.RequireFromString("1200.00")))
		assert.Equal(t, "material de escritório", entry.Notes)
		assert.Equal(t, "Paga", entry.Status)
		assert.Equal(t, "novembro-pagamentos.pdf", entry.SourceFile)
	})

	t.Run("skips the header row", func(t *testing.T) {
		pages := tablePages([][]string{
			{"Categoria", "Entidade", "Tipo", "Parcela Emissão", "Vencimento Valor",
				"Desconto", "Atualizado", "Pago", "Obs", "Status", ""},
			paymentsRow("Despesas"),
		})

		got := ParsePayments(pages, "novembro-pagamentos.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "Despesas", got[0].Category)
	})

	t.Run("skips rows of the wrong width", func(t *testing.T) {
		pages := tablePages([][]string{
			{"Despesas", "Fornecedor", "PJ"},
			append(paymentsRow("Despesas"), "extra"),
		})

		assert.Empty(t, ParsePayments(pages, "novembro-pagamentos.pdf"))
	})

	t.Run("degrades compound sub-fields to unknown when the split fails", func(t *testing.T) {
		row := paymentsRow("Despesas")
		row[3] = "" // no installment or issue date
		row[4] = "10/11/2025"
		pages := tablePages([][]string{row})

		got := ParsePayments(pages, "novembro-pagamentos.pdf")
		require.Len(t, got, 1)

		entry := got[0]
		assert.Empty(t, entry.Installment)
		assert.Nil(t, entry.IssueDate)
		// A single-token compound cell yields the same token for both halves.
		require.NotNil(t, entry.DueDate)
		assert.Nil(t, entry.FullAmount)
	})

	t.Run("keeps unparseable amounts as unknown", func(t *testing.T) {
		row := paymentsRow("Despesas")
		row[5] = "n/a"
		pages := tablePages([][]string{row})

		got := ParsePayments(pages, "novembro-pagamentos.pdf")
		require.Len(t, got, 1)
		assert.Nil(t, got[0].DiscountAmount)
	})
}
