package models

import (
	"testing"
	"time"
)

func TestStatusNext(t *testing.T) {
	tests := []struct {
		status Status
		next   Status
		ok     bool
	}{
		{StatusConfirmed, StatusDispatched, true},
		{StatusDispatched, StatusDelivered, true},
		{StatusDelivered, "", false},
		{StatusCancelled, "", false},
		{Status("bogus"), "", false},
	}

	for _, tt := range tests {
		next, ok := tt.status.Next()
		if ok != tt.ok || next != tt.next {
			t.Errorf("Next(%q) = (%q, %v), want (%q, %v)", tt.status, next, ok, tt.next, tt.ok)
		}
	}
}

func TestCanTransitionForwardOnly(t *testing.T) {
	all := []Status{StatusConfirmed, StatusDispatched, StatusDelivered, StatusCancelled}

	legal := map[[2]Status]bool{
		{StatusConfirmed, StatusDispatched}: true,
		{StatusDispatched, StatusDelivered}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionRejectsBackwardMoves(t *testing.T) {
	if CanTransition(StatusDispatched, StatusConfirmed) {
		t.Error("Dispatched -> Confirmed must not be legal")
	}
	if CanTransition(StatusDelivered, StatusDispatched) {
		t.Error("Delivered -> Dispatched must not be legal")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusConfirmed.Terminal() || StatusDispatched.Terminal() {
		t.Error("Confirmed and Dispatched are not terminal")
	}
	if !StatusDelivered.Terminal() || !StatusCancelled.Terminal() {
		t.Error("Delivered and Cancelled are terminal")
	}
}

func TestOrderClone(t *testing.T) {
	original := &Order{
		OrderID:     "ORD-10001",
		Salesperson: "Asha",
		Status:      StatusDispatched,
		Items: []OrderItem{
			{ProductID: "p1", Name: "Basmati Rice 5kg", Quantity: 3},
		},
		DispatchInfo: &DispatchInfo{
			DriverName:   "Raj",
			VehicleName:  "Truck-7",
			DispatchedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	c := original.Clone()
	c.Items[0].Quantity = 99
	c.DispatchInfo.DriverName = "someone else"

	if original.Items[0].Quantity != 3 {
		t.Error("Clone shares the items slice with the original")
	}
	if original.DispatchInfo.DriverName != "Raj" {
		t.Error("Clone shares dispatch info with the original")
	}
}
