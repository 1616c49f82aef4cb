package types

import "testing"

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "£0.00"},
		{5, "£0.05"},
		{1999, "£19.99"},
		{129900, "£1,299.00"},
		{123456789, "£1,234,567.89"},
		{-250, "-£2.50"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatPrice(tt.cents); got != tt.want {
				t.Errorf("FormatPrice(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}

func TestStockLabel(t *testing.T) {
	tests := []struct {
		stock int32
		want  string
	}{
		{0, "Out of stock"},
		{-1, "Out of stock"},
		{3, "Only 3 left"},
		{50, "In stock"},
	}
	for _, tt := range tests {
		if got := StockLabel(tt.stock); got != tt.want {
			t.Errorf("StockLabel(%d) = %q, want %q", tt.stock, got, tt.want)
		}
	}
}
