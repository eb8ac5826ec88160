package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brfin/caixa-api/internal/document"
)

// statementPage lays out a typical text-format page: a header anchor, the
// movement lines, and a footer anchor below them.
func statementPage(lines ...string) document.Page {
	page := document.Page{Height: 800}
	page.Fragments = append(page.Fragments, document.Fragment{
		Top: 30, Bottom: 45, Text: "Lançamentos",
	})
	top := 60.0
	for _, line := range lines {
		page.Fragments = append(page.Fragments, document.Fragment{
			Top: top, Bottom: top + 12, Text: line,
		})
		top += 20
	}
	page.Fragments = append(page.Fragments, document.Fragment{
		Top: 700, Bottom: 715, Text: "Informações Adicionais",
	})
	return page
}

func TestParseBankText(t *testing.T) {
	t.Run("matches a debit movement line", func(t *testing.T) {
		pages := []document.Page{statementPage(
			"05/03/2025 10 123.4 Pagamento fornecedor 2.500,00 (-)",
		)}

		got := ParseBankText(pages, "ComprovanteBB-marco.pdf")
		require.Len(t, got, 1)

		tx := got[0]
		assert.Equal(t, Debit, tx.Type)
		require.NotNil(t, tx.Amount)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("2500.00")))
		assert.Equal(t, "Pagamento fornecedor", tx.Description)
		require.NotNil(t, tx.TransactionDate)
		require.NotNil(t, tx.PostingDate)
		assert.Equal(t, *tx.PostingDate, *tx.TransactionDate)
		assert.Nil(t, tx.RawBalanceText)
		assert.Equal(t, map[string]string{"lote": "10", "document": "123.4"}, tx.Extra)
	})

	t.Run("matches credits and multiple lines in order", func(t *testing.T) {
		pages := []document.Page{statementPage(
			"05/03/2025 10 123.4 Pagamento fornecedor 2.500,00 (-)",
			"06/03/2025 11 55.1 Recebimento cliente 1.000,00 (+)",
		)}

		got := ParseBankText(pages, "ComprovanteBB.pdf")
		require.Len(t, got, 2)
		assert.Equal(t, Debit, got[0].Type)
		assert.Equal(t, Credit, got[1].Type)
		assert.Equal(t, "Recebimento cliente", got[1].Description)
	})

	t.Run("collapses wrapped descriptions", func(t *testing.T) {
		pages := []document.Page{statementPage(
			"05/03/2025 10 123.4 Transferência\nprogramada mensal 300,00 (-)",
		)}

		got := ParseBankText(pages, "ComprovanteBB.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "Transferência programada mensal", got[0].Description)
	})

	t.Run("excludes text outside the movement band", func(t *testing.T) {
		page := statementPage(
			"05/03/2025 10 123.4 Pagamento fornecedor 2.500,00 (-)",
		)
		// A future-dated item below the footer anchor must not match.
		page.Fragments = append(page.Fragments, document.Fragment{
			Top: 720, Bottom: 732,
			Text: "10/04/2025 12 99.9 Débito agendado 400,00 (-)",
		})

		got := ParseBankText([]document.Page{page}, "ComprovanteBB.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "Pagamento fornecedor", got[0].Description)
	})

	t.Run("defaults the band top when the header anchor is missing", func(t *testing.T) {
		page := document.Page{
			Height: 800,
			Fragments: []document.Fragment{
				{Top: 60, Bottom: 72, Text: "05/03/2025 10 123.4 Saque 100,00 (-)"},
			},
		}

		got := ParseBankText([]document.Page{page}, "ComprovanteBB.pdf")
		require.Len(t, got, 1)
	})

	t.Run("skips pages without a movement band", func(t *testing.T) {
		page := document.Page{
			Height: 100,
			Fragments: []document.Fragment{
				// Footer anchor right below the header leaves no band.
				{Top: 10, Bottom: 48, Text: "Lançamentos"},
				{Top: 50, Bottom: 60, Text: "Lançamentos Futuros"},
				{Top: 62, Bottom: 74, Text: "05/03/2025 10 123.4 Agendado 100,00 (-)"},
			},
		}

		assert.Empty(t, ParseBankText([]document.Page{page}, "ComprovanteBB.pdf"))
	})

	t.Run("ignores lines without a sign marker", func(t *testing.T) {
		pages := []document.Page{statementPage(
			"05/03/2025 saldo do dia 2.500,00",
		)}

		assert.Empty(t, ParseBankText(pages, "ComprovanteBB.pdf"))
	})

	t.Run("is deterministic across runs", func(t *testing.T) {
		pages := []document.Page{statementPage(
			"05/03/2025 10 123.4 Pagamento fornecedor 2.500,00 (-)",
		)}

		first := ParseBankText(pages, "ComprovanteBB.pdf")
		second := ParseBankText(pages, "ComprovanteBB.pdf")
		assert.Equal(t, first, second)
	})
}
