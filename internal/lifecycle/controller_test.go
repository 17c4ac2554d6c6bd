package lifecycle

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func TestControllerRefetchesAfterDispatch(t *testing.T) {
	store := newStubStore()
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	controller := NewController(client, testLogger())
	ctx := context.Background()

	order, err := controller.CheckStatus(ctx, "ORD-10001")
	if err != nil {
		t.Fatal(err)
	}
	getsBefore := store.statusGets

	dialog := OpenDialog(time.Now())
	dialog.SetPassword("correct-pw")
	dialog.SetDriverName("Raj")
	dialog.SetVehicleName("Truck-7")

	fresh, err := controller.ConfirmDispatch(ctx, dialog, order)
	if err != nil {
		t.Fatalf("ConfirmDispatch: %v", err)
	}

	// The post-transition view must come from a re-fetch, not from an
	// optimistic assumption about the submission.
	if store.statusGets != getsBefore+1 {
		t.Errorf("status gets = %d, want %d", store.statusGets, getsBefore+1)
	}
	if fresh.Status != models.StatusDispatched {
		t.Errorf("status = %q, want Dispatched", fresh.Status)
	}
	if !dialog.Closed() {
		t.Error("dialog must close after a confirmed dispatch")
	}
}

func TestControllerDeliveryInvalidPasswordKeepsDialogOpen(t *testing.T) {
	store := newStubStore()
	store.order.Status = models.StatusDispatched
	srv := httptest.NewServer(store.handler())
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	controller := NewController(client, testLogger())
	ctx := context.Background()

	order, err := controller.CheckStatus(ctx, "ORD-10001")
	if err != nil {
		t.Fatal(err)
	}

	dialog := OpenDialog(time.Now())
	dialog.SetPassword("wrong-pw")

	_, err = controller.ConfirmDelivery(ctx, dialog, order)
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("err = %v, want ErrInvalidPassword", err)
	}
	if dialog.Closed() {
		t.Error("dialog must stay open after an invalid password")
	}
	if dialog.Password() != "" {
		t.Error("password field must be cleared for the re-displayed dialog")
	}

	// Retry with the correct password on the same dialog.
	dialog.SetPassword("correct-pw")
	fresh, err := controller.ConfirmDelivery(ctx, dialog, order)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if fresh.Status != models.StatusDelivered {
		t.Errorf("status = %q, want Delivered", fresh.Status)
	}
}
