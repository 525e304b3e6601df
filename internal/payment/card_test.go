package payment

import (
	"testing"
	"time"

	"parts_store/internal/apperr"
)

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestCardValid(t *testing.T) {
	tests := []struct {
		name string
		card Card
	}{
		{"plain 16 digits", Card{CardNumber: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 2027}},
		{"with separators", Card{CardNumber: "4111-1111-1111-1111", ExpiryMonth: 1, ExpiryYear: 2027}},
		{"13 digits lower bound", Card{CardNumber: "4111111111111", ExpiryMonth: 6, ExpiryYear: 2026}},
		{"19 digits upper bound", Card{CardNumber: "4111111111111111111", ExpiryMonth: 7, ExpiryYear: 2026}},
		{"two digit year", Card{CardNumber: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 26}},
		{"expires current month", Card{CardNumber: "4111111111111111", ExpiryMonth: 6, ExpiryYear: 2026}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.card.validateAt(testNow); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCardInvalid(t *testing.T) {
	tests := []struct {
		name string
		card Card
	}{
		{"empty number", Card{ExpiryMonth: 12, ExpiryYear: 2027}},
		{"too short", Card{CardNumber: "411111111111", ExpiryMonth: 12, ExpiryYear: 2027}},
		{"too long", Card{CardNumber: "41111111111111111111", ExpiryMonth: 12, ExpiryYear: 2027}},
		{"letters only", Card{CardNumber: "abcdefghijklmnop", ExpiryMonth: 12, ExpiryYear: 2027}},
		{"missing expiry", Card{CardNumber: "4111111111111111"}},
		{"month zero", Card{CardNumber: "4111111111111111", ExpiryMonth: 0, ExpiryYear: 2027}},
		{"month thirteen", Card{CardNumber: "4111111111111111", ExpiryMonth: 13, ExpiryYear: 2027}},
		{"expired last month", Card{CardNumber: "4111111111111111", ExpiryMonth: 5, ExpiryYear: 2026}},
		{"expired last year", Card{CardNumber: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 2025}},
		{"expired two digit year", Card{CardNumber: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.validateAt(testNow)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperr.IsInvalidArgument(err) {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}
}
