package model

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderDraft, OrderConfirmed, true},
		{OrderDraft, OrderQuoted, false},
		{OrderConfirmed, OrderQuoted, true},
		{OrderConfirmed, OrderInvoiced, false},
		{OrderQuoted, OrderQuoteAccepted, true},
		{OrderQuoted, OrderConfirmed, true},
		{OrderQuoteAccepted, OrderInvoiced, true},
		{OrderQuoteAccepted, OrderDelivered, false},
		{OrderInvoiced, OrderDelivered, true},
		{OrderInvoiced, OrderCancelled, true},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderDelivered, OrderCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderDraft, OrderConfirmed, OrderQuoted, OrderQuoteAccepted, OrderInvoiced} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if OrderStatus("paid").Valid() {
		t.Error("unknown status reported as valid")
	}
}
