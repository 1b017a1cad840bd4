// Package accountno finds bank account numbers in statement file names.
package accountno

import (
	"regexp"
	"strings"
	"unicode"
)

// 11 account digits, one check digit, then the currency.
var statementPattern = regexp.MustCompile(`(\d{11})\dEUR`)

// Extract returns the account number embedded in a statement file name.
func Extract(fileName string) (string, bool) {
	m := statementPattern.FindStringSubmatch(fileName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Sanitize drops every non-word character and upper-cases the rest so that
// "FR76 3000-1234" and "fr7630001234" compare equal.
func Sanitize(accountNumber string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, accountNumber))
}

// FromFileName combines Extract and Sanitize.
func FromFileName(fileName string) (string, bool) {
	acc, ok := Extract(fileName)
	if !ok {
		return "", false
	}
	return Sanitize(acc), true
}
