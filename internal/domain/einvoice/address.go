package einvoice

import "strings"

// MaxAddressLineLength is the schema limit for Addr1 and Addr2.
const MaxAddressLineLength = 100

// SplitAddress breaks a free-form address into the two schema address lines.
// The break falls on the last space that keeps the first line within the
// limit; text that does not fit on the second line is cut.
func SplitAddress(address string) (string, string) {
	runes := []rune(strings.Join(strings.Fields(address), " "))
	if len(runes) <= MaxAddressLineLength {
		return string(runes), ""
	}

	cut := MaxAddressLineLength
	for i := MaxAddressLineLength; i > 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	line1 := strings.TrimSpace(string(runes[:cut]))
	rest := []rune(strings.TrimSpace(string(runes[cut:])))
	if len(rest) > MaxAddressLineLength {
		rest = rest[:MaxAddressLineLength]
	}
	return line1, strings.TrimSpace(string(rest))
}
