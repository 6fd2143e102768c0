package i2c

import (
	"context"
	"log"
)

// Logged traces every transfer on the wrapped bus.
type Logged struct {
	bus Bus
	l   *log.Logger
}

func NewLogged(bus Bus, l *log.Logger) *Logged {
	return &Logged{bus: bus, l: l}
}

func (b *Logged) Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error {
	err := b.bus.Read(ctx, addr, reg, buf)
	if err != nil {
		b.l.Printf("i2c read 0x%02x reg 0x%02x (%d bytes): %v", addr, reg, len(buf), err)
	} else {
		b.l.Printf("i2c read 0x%02x reg 0x%02x: % x", addr, reg, buf)
	}
	return err
}

func (b *Logged) Write(ctx context.Context, addr uint16, reg uint8, data []byte) error {
	err := b.bus.Write(ctx, addr, reg, data)
	if err != nil {
		b.l.Printf("i2c write 0x%02x reg 0x%02x % x: %v", addr, reg, data, err)
	} else {
		b.l.Printf("i2c write 0x%02x reg 0x%02x: % x", addr, reg, data)
	}
	return err
}
