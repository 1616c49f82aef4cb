package types

import (
	"fmt"
	"strings"
	"time"
)

// FormatPrice renders a price held in cents, e.g 129900 -> "£1,299.00"
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	pounds := fmt.Sprintf("%d", cents/100)

	// thousands separators
	var b strings.Builder
	for i, r := range pounds {
		if i > 0 && (len(pounds)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%s£%s.%02d", sign, b.String(), cents%100)
}

// FormatDate renders a timestamp for display in the account pages
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}

// StockLabel describes product availability
func StockLabel(stock int32) string {
	switch {
	case stock <= 0:
		return "Out of stock"
	case stock < 5:
		return fmt.Sprintf("Only %d left", stock)
	default:
		return "In stock"
	}
}
