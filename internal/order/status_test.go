package order

import (
	"testing"

	"parts_store/internal/apperr"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		wantOK  bool
	}{
		{"initiated to preparing", StatusInitiated, StatusPreparing, true},
		{"initiated to shipped skips ahead", StatusInitiated, StatusShipped, true},
		{"preparing to shipped", StatusPreparing, StatusShipped, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"preparing back to initiated", StatusPreparing, StatusInitiated, false},
		{"shipped re-entry", StatusShipped, StatusShipped, false},
		{"delivered to shipped", StatusDelivered, StatusShipped, false},
		{"cancel from initiated", StatusInitiated, StatusCancelled, true},
		{"cancel from preparing", StatusPreparing, StatusCancelled, true},
		{"cancel from shipped", StatusShipped, StatusCancelled, true},
		{"cancel after delivered", StatusDelivered, StatusCancelled, false},
		{"cancel twice", StatusCancelled, StatusCancelled, false},
		{"advance after cancelled", StatusCancelled, StatusDelivered, false},
		{"unknown next status", StatusInitiated, "REFUNDED", false},
		{"lowercase accepted", StatusPreparing, "shipped", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.current, tt.next)
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("expected rejection")
				}
				if !apperr.IsInvalidArgument(err) {
					t.Errorf("expected InvalidArgument, got %v", err)
				}
			}
		})
	}
}

func TestLegacyAliases(t *testing.T) {
	// 历史数据里的 CONFIRMED / IN_PREPARATION 折算到 PREPARING 的序号。
	for _, legacy := range []string{"CONFIRMED", "IN_PREPARATION"} {
		if err := ValidateTransition(legacy, StatusShipped); err != nil {
			t.Errorf("from %s to SHIPPED: unexpected error: %v", legacy, err)
		}
		if err := ValidateTransition(legacy, StatusInitiated); err == nil {
			t.Errorf("from %s back to INITIATED: expected rejection", legacy)
		}
		if err := ValidateTransition(legacy, StatusPreparing); err == nil {
			t.Errorf("from %s to PREPARING (lateral): expected rejection", legacy)
		}
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct{ in, want string }{
		{"confirmed", StatusPreparing},
		{"IN_PREPARATION", StatusPreparing},
		{"shipped", StatusShipped},
		{"DELIVERED", StatusDelivered},
		{"REFUNDED", "REFUNDED"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusFlowCopy(t *testing.T) {
	flow := StatusFlow()
	want := []string{StatusInitiated, StatusPreparing, StatusShipped, StatusDelivered}
	if len(flow) != len(want) {
		t.Fatalf("flow length = %d, want %d", len(flow), len(want))
	}
	for i := range want {
		if flow[i] != want[i] {
			t.Errorf("flow[%d] = %s, want %s", i, flow[i], want[i])
		}
	}

	// 返回的是副本，调用方修改不应污染内部序列。
	flow[0] = "HACKED"
	if StatusFlow()[0] != StatusInitiated {
		t.Error("StatusFlow must return a copy")
	}
}
