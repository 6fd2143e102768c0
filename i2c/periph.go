package i2c

import (
	"context"
	"fmt"

	periphi2c "periph.io/x/conn/v3/i2c"
)

// PeriphBus adapts a periph.io bus, as opened by i2creg.Open.
type PeriphBus struct {
	bus periphi2c.Bus
}

func NewPeriphBus(bus periphi2c.Bus) *PeriphBus {
	return &PeriphBus{bus: bus}
}

func (b *PeriphBus) Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.bus.Tx(addr, []byte{reg}, buf); err != nil {
		return fmt.Errorf("tx register 0x%02x: %w", reg, err)
	}
	return nil
}

func (b *PeriphBus) Write(ctx context.Context, addr uint16, reg uint8, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.bus.Tx(addr, append([]byte{reg}, data...), nil); err != nil {
		return fmt.Errorf("tx register 0x%02x: %w", reg, err)
	}
	return nil
}
