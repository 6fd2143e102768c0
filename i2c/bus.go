// Package i2c holds the register transport used by the sensor drivers, with
// adapters for the Linux I2C stacks we run on.
package i2c

import (
	"context"
	"errors"
)

// ErrTimeout is returned when a transfer does not complete within the bounded
// wait of a Serial bus.
var ErrTimeout = errors.New("i2c: transfer timed out")

// A Bus moves register bytes to and from devices on one I2C bus.
//
// Read is a single burst starting at reg; the device decides whether the
// register address auto-increments. Write sends reg followed by data in one
// transaction. Both block until the transfer is done.
type Bus interface {
	Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error
	Write(ctx context.Context, addr uint16, reg uint8, data []byte) error
}
