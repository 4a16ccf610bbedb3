package einvoice

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	onesWords = []string{
		"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	tensWords = []string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
	}
)

// AmountInWords spells an INR amount using the Indian numbering system,
// e.g. "Rupees One Lakh Five Thousand and Fifty Paise Only".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	rupees := amount.Truncate(0)
	paise := amount.Sub(rupees).Mul(hundred).Round(0).IntPart()

	title := cases.Title(language.English)
	var b strings.Builder
	b.WriteString("Rupees ")
	if rupees.IsZero() {
		b.WriteString("Zero")
	} else {
		b.WriteString(title.String(indianWords(rupees.IntPart())))
	}
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(title.String(belowHundred(paise)))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

func indianWords(n int64) string {
	var parts []string
	if n >= 10000000 {
		parts = append(parts, indianWords(n/10000000), "crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, belowHundred(n/100000), "lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, belowHundred(n/1000), "thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}
