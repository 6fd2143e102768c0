package i2c

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// A Device is typically a *sysfs.I2cDevice (gobot.io/x/gobot/sysfs).
type Device interface {
	SetAddress(address int) error
	ReadByteData(reg uint8) (val uint8, err error)
	WriteByteData(reg, val uint8) error
	WriteByte(val byte) error
	io.ReadWriter
}

// DeviceBus adapts a Device, which carries its target address as state, to
// the Bus interface.
type DeviceBus struct {
	dev Device
	mut sync.Mutex
}

func NewDeviceBus(dev Device) *DeviceBus {
	return &DeviceBus{dev: dev}
}

func (b *DeviceBus) Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mut.Lock()
	defer b.mut.Unlock()

	if err := b.dev.SetAddress(int(addr)); err != nil {
		return fmt.Errorf("set device address: %w", err)
	}
	if len(buf) == 1 {
		val, err := b.dev.ReadByteData(reg)
		if err != nil {
			return fmt.Errorf("read byte register: %w", err)
		}
		buf[0] = val
		return nil
	}
	if err := b.dev.WriteByte(reg); err != nil {
		return fmt.Errorf("write register address: %w", err)
	}
	n, err := b.dev.Read(buf)
	if err != nil {
		return fmt.Errorf("read block: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("read block: %w", io.ErrUnexpectedEOF)
	}
	return nil
}

func (b *DeviceBus) Write(ctx context.Context, addr uint16, reg uint8, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mut.Lock()
	defer b.mut.Unlock()

	if err := b.dev.SetAddress(int(addr)); err != nil {
		return fmt.Errorf("set device address: %w", err)
	}
	if len(data) == 1 {
		if err := b.dev.WriteByteData(reg, data[0]); err != nil {
			return fmt.Errorf("write byte register: %w", err)
		}
		return nil
	}
	if _, err := b.dev.Write(append([]byte{reg}, data...)); err != nil {
		return fmt.Errorf("write block: %w", err)
	}
	return nil
}
