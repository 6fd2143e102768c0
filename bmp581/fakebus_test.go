package bmp581

import (
	"context"
	"errors"
	"testing"
)

var errNack = errors.New("nack")

type transfer struct {
	write bool
	reg   uint8
	data  []byte
}

// fakeBus is a register file that records every transfer.
type fakeBus struct {
	regs      [256]byte
	fifo      []byte
	nvm       map[uint8]uint16
	nvmFail   bool
	nvmStuck  bool // NVM commands never complete
	log       []transfer
	writes    int
	failWrite int // fail the nth write attempt, counting from one
	failRead  map[uint8]error
}

func newFakeBus() *fakeBus {
	b := &fakeBus{
		nvm:      make(map[uint8]uint16),
		failRead: make(map[uint8]error),
	}
	b.powerOn()
	return b
}

func (b *fakeBus) powerOn() {
	b.regs = [256]byte{}
	b.regs[RegChipID] = 0x50
	b.regs[RegRevID] = 0x32
	b.regs[RegStatus] = 0x06
	b.regs[RegIntStatus] = 0x10
	b.regs[RegODRConfig] = 0x00
}

func (b *fakeBus) Read(_ context.Context, addr uint16, reg uint8, buf []byte) error {
	b.log = append(b.log, transfer{reg: reg})
	if err := b.failRead[reg]; err != nil {
		return err
	}
	if reg == RegFIFOData {
		n := copy(buf, b.fifo)
		b.fifo = b.fifo[n:]
		for i := n; i < len(buf); i++ {
			buf[i] = fifoEmpty
		}
		return nil
	}
	for i := range buf {
		buf[i] = b.regs[int(reg)+i]
	}
	return nil
}

func (b *fakeBus) Write(_ context.Context, addr uint16, reg uint8, data []byte) error {
	b.writes++
	b.log = append(b.log, transfer{write: true, reg: reg, data: append([]byte(nil), data...)})
	if b.writes == b.failWrite {
		return errNack
	}
	if reg == RegCmd {
		b.command(Command(data[0]))
		return nil
	}
	copy(b.regs[reg:], data)
	return nil
}

func (b *fakeBus) command(cmd Command) {
	row := b.regs[RegNVMAddr] & 0x3f
	status := byte(0x03)
	if b.nvmFail {
		status |= 0x04
	}
	if b.nvmStuck && cmd != CmdSoftReset {
		b.regs[RegStatus] = 0x01
		return
	}
	switch cmd {
	case CmdNVMRead:
		v := b.nvm[row]
		b.regs[RegNVMDataLSB] = byte(v)
		b.regs[RegNVMDataMSB] = byte(v >> 8)
		b.regs[RegStatus] = status
	case CmdNVMWrite:
		if b.regs[RegNVMAddr]&0x40 != 0 && !b.nvmFail {
			b.nvm[row] = uint16(b.regs[RegNVMDataLSB]) | uint16(b.regs[RegNVMDataMSB])<<8
		}
		b.regs[RegStatus] = status
	case CmdSoftReset:
		b.powerOn()
	}
}

func (b *fakeBus) written() []transfer {
	var res []transfer
	for _, t := range b.log {
		if t.write {
			res = append(res, t)
		}
	}
	return res
}

func (b *fakeBus) reset() {
	b.log = nil
	b.writes = 0
}

func newDev(t *testing.T, bus *fakeBus) *Dev {
	t.Helper()
	opts := DefaultOpts
	opts.NVMPollInterval = 0
	d, err := New(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// newConfigured returns a driver that passed Initialize, with the bus log
// cleared.
func newConfigured(t *testing.T) (*Dev, *fakeBus) {
	t.Helper()
	bus := newFakeBus()
	d := newDev(t, bus)
	if err := d.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	bus.reset()
	return d, bus
}
