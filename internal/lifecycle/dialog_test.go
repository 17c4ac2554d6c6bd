package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func openTestDialog() *Dialog {
	d := OpenDialog(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	d.SetPassword("secret")
	d.SetDriverName("Raj")
	d.SetVehicleName("Truck-7")
	return d
}

func TestDialogSuccessDiscardsPasswordAndCloses(t *testing.T) {
	d := openTestDialog()

	if err := d.Submit(func() error { return nil }); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if d.State() != DialogSucceeded || !d.Closed() {
		t.Errorf("state = %v, want succeeded/closed", d.State())
	}
	if d.Password() != "" {
		t.Error("password must be discarded after success")
	}
}

func TestDialogInvalidPasswordClearsOnlyPassword(t *testing.T) {
	d := openTestDialog()

	err := d.Submit(func() error { return ErrInvalidPassword })
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("Submit err = %v, want ErrInvalidPassword", err)
	}

	if d.State() != DialogFailed {
		t.Errorf("state = %v, want failed", d.State())
	}
	if d.Password() != "" {
		t.Error("password must clear after an invalid password")
	}
	if d.DriverName() != "Raj" || d.VehicleName() != "Truck-7" {
		t.Error("driver and vehicle must survive an invalid password")
	}
	if !errors.Is(d.Failure(), ErrInvalidPassword) {
		t.Errorf("Failure() = %v, want ErrInvalidPassword", d.Failure())
	}
}

func TestDialogOtherFailurePreservesAllFields(t *testing.T) {
	d := openTestDialog()

	_ = d.Submit(func() error { return ErrTransient })

	if d.Password() != "secret" {
		t.Error("password must survive a transient failure")
	}
	if d.DriverName() != "Raj" || d.VehicleName() != "Truck-7" {
		t.Error("fields must survive a transient failure")
	}
}

func TestDialogRetryAfterFailure(t *testing.T) {
	d := openTestDialog()
	_ = d.Submit(func() error { return ErrInvalidPassword })

	// Operator types the password again into the re-displayed dialog.
	d.SetPassword("correct")
	if err := d.Submit(func() error { return nil }); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if !d.Closed() {
		t.Error("dialog must close after a successful retry")
	}
}

func TestDialogRejectsDoubleSubmit(t *testing.T) {
	d := openTestDialog()
	if err := d.Submit(func() error { return nil }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := d.Submit(func() error { return nil }); err == nil {
		t.Error("submitting a closed dialog must fail")
	}
}

func TestDialogCancelDiscardsState(t *testing.T) {
	d := openTestDialog()
	_ = d.Submit(func() error { return ErrTransient })

	d.Cancel()

	if d.Password() != "" || d.DriverName() != "" || d.VehicleName() != "" {
		t.Error("cancel must discard all form state")
	}
	if d.State() != DialogIdle || d.Failure() != nil {
		t.Errorf("state = %v failure = %v, want idle/nil", d.State(), d.Failure())
	}
}

func TestDialogOpenedAtIsFrozen(t *testing.T) {
	opened := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := OpenDialog(opened)
	d.SetPassword("pw")
	_ = d.Submit(func() error { return nil })

	if !d.OpenedAt().Equal(opened) {
		t.Errorf("OpenedAt = %v, want %v", d.OpenedAt(), opened)
	}
}
