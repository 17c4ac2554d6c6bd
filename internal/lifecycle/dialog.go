package lifecycle

import (
	"errors"
	"fmt"
	"time"
)

// DialogState tracks one password-gated confirmation flow. The flow is an
// explicit machine (Idle -> Submitting -> Succeeded | Failed) rather than a
// pile of booleans, so retry and field-preservation behavior is testable.
type DialogState int

const (
	DialogIdle DialogState = iota
	DialogSubmitting
	DialogSucceeded
	DialogFailed
)

func (s DialogState) String() string {
	switch s {
	case DialogIdle:
		return "idle"
	case DialogSubmitting:
		return "submitting"
	case DialogSucceeded:
		return "succeeded"
	case DialogFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dialog holds the transient form state for a dispatch or delivery
// confirmation. The displayed time is frozen at open; it is advisory only and
// never sent to the store.
type Dialog struct {
	state    DialogState
	openedAt time.Time

	password    string
	driverName  string
	vehicleName string

	failure error
}

func OpenDialog(now time.Time) *Dialog {
	return &Dialog{state: DialogIdle, openedAt: now}
}

func (d *Dialog) State() DialogState { return d.state }
func (d *Dialog) OpenedAt() time.Time { return d.openedAt }
func (d *Dialog) Failure() error     { return d.failure }

func (d *Dialog) SetPassword(v string)    { d.password = v }
func (d *Dialog) SetDriverName(v string)  { d.driverName = v }
func (d *Dialog) SetVehicleName(v string) { d.vehicleName = v }

func (d *Dialog) Password() string    { return d.password }
func (d *Dialog) DriverName() string  { return d.driverName }
func (d *Dialog) VehicleName() string { return d.vehicleName }

// Submit runs the confirmation round trip. On success the password is
// discarded and the dialog closes. On an invalid password only the password
// field clears; the other fields survive for the re-displayed dialog. Any
// other failure preserves everything for retry.
func (d *Dialog) Submit(do func() error) error {
	if d.state == DialogSubmitting {
		return fmt.Errorf("submission already in flight")
	}
	if d.state == DialogSucceeded {
		return fmt.Errorf("dialog already closed")
	}

	d.state = DialogSubmitting
	err := do()
	if err == nil {
		d.state = DialogSucceeded
		d.password = ""
		d.failure = nil
		return nil
	}

	d.state = DialogFailed
	d.failure = err
	if errors.Is(err, ErrInvalidPassword) {
		d.password = ""
	}
	return err
}

// Closed reports whether the dialog finished successfully.
func (d *Dialog) Closed() bool { return d.state == DialogSucceeded }

// Cancel discards all local form state. No in-flight request is aborted; the
// client exposes no abort semantics.
func (d *Dialog) Cancel() {
	if d.state == DialogSubmitting {
		return
	}
	d.password = ""
	d.driverName = ""
	d.vehicleName = ""
	d.failure = nil
	d.state = DialogIdle
}
