package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brfin/caixa-api/internal/document"
)

func receivablesRow(name string) []string {
	return []string{
		"Serviços", name, "PF", "(11) 99999-0000", "Maria Souza",
		"1/10", "01/01/2025", "10/01/2025",
		"100,00", "0,00", "100,00", "100,00",
		"ok", "Paga", "Ativo", "",
	}
}

func continuationRow(name, phone, responsible string) []string {
	return []string{"", name, "", phone, responsible, "", "", "", "", "", "", "", "", "", "", ""}
}

func TestParseReceivables(t *testing.T) {
	t.Run("maps a complete row", func(t *testing.T) {
		pages := tablePages([][]string{receivablesRow("João Silva")})

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 1)

		entry := got[0]
		assert.Equal(t, "Serviços", entry.Category)
		assert.Equal(t, "João Silva", entry.EntityName)
		assert.Equal(t, "PF", entry.EntityType)
		assert.Equal(t, "(11) 99999-0000", entry.Phone)
		assert.Equal(t, "Maria Souza", entry.FinancialResponsible)
		assert.Equal(t, "1/10", entry.Installment)
		require.NotNil(t, entry.DueDate)
		assert.Equal(t, "10/01/2025", entry.DueDate.Format("02/01/2006"))
		require.NotNil(t, entry.PaidAmount)
		assert.True(t, entry.PaidAmount.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, "Paga", entry.Status)
		assert.Equal(t, "Ativo", entry.ContractStatus)
	})

	t.Run("merges a continuation row exactly once", func(t *testing.T) {
		pages := tablePages([][]string{
			receivablesRow("João Silva"),
			continuationRow("da Costa", "ramal 12", "Lima"),
		})

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 1)

		entry := got[0]
		assert.Equal(t, "João Silva da Costa", entry.EntityName)
		assert.Equal(t, "(11) 99999-0000 ramal 12", entry.Phone)
		assert.Equal(t, "Maria Souza Lima", entry.FinancialResponsible)
	})

	t.Run("finalizes on the next new-record row, not twice", func(t *testing.T) {
		pages := tablePages([][]string{
			receivablesRow("João Silva"),
			continuationRow("da Costa", "", ""),
			receivablesRow("Ana Pereira"),
		})

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 2)
		assert.Equal(t, "João Silva da Costa", got[0].EntityName)
		assert.Equal(t, "Ana Pereira", got[1].EntityName)
	})

	t.Run("drops buffers without a due date", func(t *testing.T) {
		row := receivablesRow("João Silva")
		row[7] = "a combinar"
		pages := tablePages([][]string{row})

		assert.Empty(t, ParseReceivables(pages, "novembro-recebimentos.pdf"))
	})

	t.Run("drops buffers without an entity name", func(t *testing.T) {
		row := receivablesRow("")
		row[0] = "Serviços" // still a new-record row
		pages := tablePages([][]string{row})

		assert.Empty(t, ParseReceivables(pages, "novembro-recebimentos.pdf"))
	})

	t.Run("drops buffers narrower than the full layout", func(t *testing.T) {
		pages := tablePages([][]string{
			{"Serviços", "João Silva", "PF", "tel", "resp", "1", "01/01/2025", "10/01/2025"},
		})

		assert.Empty(t, ParseReceivables(pages, "novembro-recebimentos.pdf"))
	})

	t.Run("ignores header rows and orphan continuations", func(t *testing.T) {
		pages := tablePages([][]string{
			{"Categoria", "Entidade", "Tipo", "Telefone", "Responsável", "Parcela",
				"Emissão", "Vencimento", "Integral", "Desconto", "Atualizado", "Pago",
				"Obs", "Status", "Contrato", ""},
			continuationRow("órfã", "", ""), // no buffer yet
			receivablesRow("João Silva"),
		})

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "João Silva", got[0].EntityName)
	})

	t.Run("ignores narrow continuation rows", func(t *testing.T) {
		pages := tablePages([][]string{
			receivablesRow("João Silva"),
			{"", "da Costa", "", ""}, // width 4: nothing mergeable
		})

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "João Silva", got[0].EntityName)
	})

	t.Run("resets the buffer between tables", func(t *testing.T) {
		pages := []document.Page{{
			Tables: []document.Table{
				{Rows: [][]string{receivablesRow("João Silva")}},
				{Rows: [][]string{continuationRow("da Costa", "", "")}},
			},
		}}

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "João Silva", got[0].EntityName)
	})

	t.Run("finalizes a trailing buffer at end of table", func(t *testing.T) {
		pages := tablePages([][]string{
			receivablesRow("Ana Pereira"),
			continuationRow("de Almeida", "", ""),
		})

		got := ParseReceivables(pages, "novembro-recebimentos.pdf")
		require.Len(t, got, 1)
		assert.Equal(t, "Ana Pereira de Almeida", got[0].EntityName)
	})

	t.Run("is deterministic across runs", func(t *testing.T) {
		pages := tablePages([][]string{
			receivablesRow("João Silva"),
			continuationRow("da Costa", "", ""),
		})

		first := ParseReceivables(pages, "novembro-recebimentos.pdf")
		second := ParseReceivables(pages, "novembro-recebimentos.pdf")
		assert.Equal(t, first, second)
	})
}
