package i2c

import (
	"context"
	"fmt"

	"github.com/kidoman/embd"
)

// EmbdBus adapts an embd.I2CBus, as returned by embd.NewI2CBus.
type EmbdBus struct {
	bus embd.I2CBus
}

func NewEmbdBus(bus embd.I2CBus) *EmbdBus {
	return &EmbdBus{bus: bus}
}

func (b *EmbdBus) Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.bus.ReadFromReg(byte(addr), reg, buf); err != nil {
		return fmt.Errorf("read from register 0x%02x: %w", reg, err)
	}
	return nil
}

func (b *EmbdBus) Write(ctx context.Context, addr uint16, reg uint8, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.bus.WriteToReg(byte(addr), reg, data); err != nil {
		return fmt.Errorf("write to register 0x%02x: %w", reg, err)
	}
	return nil
}

func (b *EmbdBus) Close() error {
	return b.bus.Close()
}
