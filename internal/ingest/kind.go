// Package ingest ties document routing, extraction, persistence and job
// orchestration together for uploaded financial documents.
package ingest

import "strings"

// DocumentKind identifies which extraction strategy a document needs. It is
// resolved once from the upload filename and passed explicitly through the
// pipeline; nothing downstream re-derives it.
type DocumentKind string

const (
	// KindBankTable is the older tabular bank statement layout.
	KindBankTable DocumentKind = "bank_table"
	// KindBankText is the newer text bank statement layout ("ComprovanteBB" exports).
	KindBankText DocumentKind = "bank_text"
	// KindPayments is the internal accounts-payable ledger.
	KindPayments DocumentKind = "payments"
	// KindReceivables is the internal accounts-receivable ledger.
	KindReceivables DocumentKind = "receivables"
	// KindUnknown means the filename matched no known document family.
	KindUnknown DocumentKind = "unknown"
)

// DetectBankKind resolves the statement layout for a bank upload.
func DetectBankKind(filename string) DocumentKind {
	if strings.HasPrefix(filename, "ComprovanteBB") {
		return KindBankText
	}
	return KindBankTable
}

// DetectInternalKind resolves the ledger type for an internal-report upload.
func DetectInternalKind(filename string) DocumentKind {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "pagamentos"):
		return KindPayments
	case strings.Contains(lower, "recebimentos"):
		return KindReceivables
	default:
		return KindUnknown
	}
}
