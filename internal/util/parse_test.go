package util

import "testing"

func TestSafeAtoi(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"123", 123},
		{" 42 ", 42},
		{"", 0},
		{"abc", 0},
		{"12.5", 0},
	}
	for _, tt := range tests {
		if got := SafeAtoi(tt.input); got != tt.want {
			t.Errorf("SafeAtoi(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1,024 sold", 1024},
		{"MOQ: 500 pieces", 500},
		{"no numbers here", 0},
		{"", 0},
		{"10000+ orders", 10000},
	}
	for _, tt := range tests {
		if got := ExtractNumber(tt.input); got != tt.want {
			t.Errorf("ExtractNumber(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		input        string
		wantAmount   float64
		wantCurrency string
	}{
		{"US $12.50", 12.50, "USD"},
		{"$1,299.00", 1299.00, "USD"},
		{"€3,200", 3200, "EUR"},
		{"£45.99", 45.99, "GBP"},
		{"12.00 USD", 12.00, "USD"},
		{"Contact supplier", 0, "USD"},
		{"", 0, ""},
	}
	for _, tt := range tests {
		amount, currency := ExtractPrice(tt.input)
		if amount != tt.wantAmount || currency != tt.wantCurrency {
			t.Errorf("ExtractPrice(%q) = (%v, %q), want (%v, %q)",
				tt.input, amount, currency, tt.wantAmount, tt.wantCurrency)
		}
	}
}

func TestExtractFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"4.7 stars", 4.7},
		{"Rating: 3", 3},
		{"none", 0},
	}
	for _, tt := range tests {
		if got := ExtractFloat(tt.input); got != tt.want {
			t.Errorf("ExtractFloat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCleanNumericString(t *testing.T) {
	if got := CleanNumericString("a1b2c3"); got != "123" {
		t.Errorf("CleanNumericString = %q, want %q", got, "123")
	}
}
