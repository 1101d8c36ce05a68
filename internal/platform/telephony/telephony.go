package telephony

import (
	"context"
	"errors"
	"time"
)

// ErrPermissionDenied is returned when the device gateway refuses to place
// a call because the user has not granted the call permission.
var ErrPermissionDenied = errors.New("telephony: call permission denied")

// CallState describes the device-reported state of the active call.
type CallState string

const (
	StateIdle       CallState = "idle"
	StateConnecting CallState = "connecting"
	StateActive     CallState = "active"
)

func ValidState(s string) bool {
	switch CallState(s) {
	case StateIdle, StateConnecting, StateActive:
		return true
	}
	return false
}

// CallEvent is a single call-state transition reported by the device.
// At is stamped on receipt so downstream duration math does not depend
// on device clocks.
type CallEvent struct {
	State  CallState
	Number string
	At     time.Time
}

// Dialer places an outbound call to a phone number.
type Dialer interface {
	Dial(ctx context.Context, number string) error
}

// EventSource exposes the stream of call-state transitions.
type EventSource interface {
	Events() <-chan CallEvent
}
