package utils

import "fmt"

// FormatCents renders a cent amount as a dollar string, dropping the decimal
// part for whole-dollar amounts (e.g. 1050000 -> "$10500", 1999 -> "$19.99").
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if cents%100 == 0 {
		return fmt.Sprintf("%s$%d", sign, cents/100)
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
