// Package format renders monetary amounts for API summaries.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printers = map[string]*message.Printer{
	"BRL": message.NewPrinter(language.BrazilianPortuguese),
	"USD": message.NewPrinter(language.AmericanEnglish),
	"EUR": message.NewPrinter(language.German),
}

var symbols = map[string]string{
	"BRL": "R$",
	"USD": "$",
	"EUR": "€",
}

// Money renders an amount with the grouping and decimal conventions of the
// currency's home locale. Unknown currency codes fall back to a plain
// two-decimal rendering prefixed with the code itself.
func Money(currency string, amount float64) string {
	printer, ok := printers[currency]
	if !ok {
		return fmt.Sprintf("%s %.2f", currency, amount)
	}
	return printer.Sprintf("%s %.2f", symbols[currency], amount)
}
