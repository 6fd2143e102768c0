package bmp581

import (
	"errors"
	"fmt"

	"github.com/calmh/baro/i2c"
)

var (
	ErrTransport            = errors.New("bmp581: transport error")
	ErrTransportTimeout     = i2c.ErrTimeout
	ErrInvalidEncoding      = errors.New("bmp581: invalid encoding")
	ErrInitializationFailed = errors.New("bmp581: initialization failed")
	ErrInvalidTransition    = errors.New("bmp581: invalid transition")
	ErrInvalidConfig        = errors.New("bmp581: invalid configuration")
	ErrNVM                  = errors.New("bmp581: nvm command failed")
)

// TransportError is a failed bus transfer. It matches ErrTransport, and
// ErrTransportTimeout when the transfer timed out.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bmp581: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// EncodingError is a register value the codec cannot represent.
type EncodingError struct {
	Reg    uint8
	Value  byte
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("bmp581: register 0x%02x value 0x%02x: %s", e.Reg, e.Value, e.Reason)
}

func (e *EncodingError) Is(target error) bool { return target == ErrInvalidEncoding }

// Check names one of the power-on checks done by Initialize.
type Check int

const (
	CheckChipID Check = iota
	CheckRevision
	CheckInterruptStatus
	CheckStatus
	CheckPowerMode
)

func (c Check) String() string {
	switch c {
	case CheckChipID:
		return "chip id"
	case CheckRevision:
		return "revision"
	case CheckInterruptStatus:
		return "interrupt status"
	case CheckStatus:
		return "status"
	case CheckPowerMode:
		return "power mode"
	default:
		return fmt.Sprintf("Check(%d)", int(c))
	}
}

// InitError reports the first power-on check that failed.
type InitError struct {
	Check Check
	Got   byte
}

func (e *InitError) Error() string {
	return fmt.Sprintf("bmp581: initialization failed: unexpected %s 0x%02x", e.Check, e.Got)
}

func (e *InitError) Is(target error) bool { return target == ErrInitializationFailed }

// StartupError reports the step of the startup configuration that failed.
// Steps are numbered from one; earlier steps remain in effect on the device.
type StartupError struct {
	Step int
	Name string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("bmp581: startup step %d (%s): %v", e.Step, e.Name, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// TransitionError is an operation attempted in a state that does not allow
// it.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("bmp581: %s not allowed in state %s", e.Op, e.State)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
