package pricing

import "testing"

func TestCalculateNoDiscount(t *testing.T) {
	lines := []Line{
		{PartID: 1, Qty: 2, UnitPriceCents: 2500},
		{PartID: 2, Qty: 1, UnitPriceCents: 5000},
	}

	q := Calculate(lines, 0)

	if q.SubtotalCents != 10000 {
		t.Fatalf("subtotal = %d, want 10000", q.SubtotalCents)
	}
	if q.TotalCents != 10000 {
		t.Errorf("total = %d, want 10000", q.TotalCents)
	}
	if q.Enterprise {
		t.Error("expected non-enterprise quote without discount")
	}
	if q.ShippingCents != 0 {
		t.Errorf("shipping = %d, want 0", q.ShippingCents)
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name      string
		subtotal  int64
		percent   float64
		wantTotal int64
	}{
		{"ten percent off 100.00", 10000, 10, 9000},
		{"rounds half up", 999, 5, 949},    // 49.95 -> 50
		{"rounds down below half", 101, 1, 100}, // 1.01 -> 1
		{"negative percent ignored", 10000, -5, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Calculate([]Line{{PartID: 1, Qty: 1, UnitPriceCents: tt.subtotal}}, tt.percent)
			if q.TotalCents != tt.wantTotal {
				t.Errorf("total = %d, want %d", q.TotalCents, tt.wantTotal)
			}
			if wantEnterprise := tt.percent > 0; q.Enterprise != wantEnterprise {
				t.Errorf("enterprise = %v, want %v", q.Enterprise, wantEnterprise)
			}
		})
	}
}

func TestCalculateEmptyLines(t *testing.T) {
	q := Calculate(nil, 10)
	if q.SubtotalCents != 0 || q.TotalCents != 0 {
		t.Errorf("empty lines: subtotal=%d total=%d, want 0/0", q.SubtotalCents, q.TotalCents)
	}
}

func TestLineTotalCents(t *testing.T) {
	if got := LineTotalCents(Line{Qty: 3, UnitPriceCents: 1999}); got != 5997 {
		t.Errorf("line total = %d, want 5997", got)
	}
}
