package parser

import "strings"

// classifyMarkedValue handles the table-layout value token, where credits
// carry a trailing " C" and debits a trailing " D". It returns the polarity
// and the token with the marker removed, ready for amount parsing.
func classifyMarkedValue(raw string) (Polarity, string) {
	polarity := Debit
	if strings.Contains(raw, " C") {
		polarity = Credit
	}
	stripped := strings.ReplaceAll(raw, " C", "")
	stripped = strings.ReplaceAll(stripped, " D", "")
	return polarity, stripped
}

// classifySignedValue handles the text-layout value token, where the sign is
// a parenthesized suffix: "2.500,00 (-)". It returns the polarity and the
// token with the suffix removed.
func classifySignedValue(raw string) (Polarity, string) {
	polarity := Debit
	if strings.Contains(raw, "(+)") {
		polarity = Credit
	}
	stripped := strings.ReplaceAll(raw, " (+)", "")
	stripped = strings.ReplaceAll(stripped, " (-)", "")
	return polarity, stripped
}
