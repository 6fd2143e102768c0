package i2c

import (
	"context"
	"fmt"
)

// Reader reads registers of one device and remembers the first error, so a
// run of reads can be checked once at the end.
type Reader struct {
	ctx   context.Context
	bus   Bus
	addr  uint16
	error error
}

func NewReader(ctx context.Context, bus Bus, addr uint16) *Reader {
	return &Reader{ctx: ctx, bus: bus, addr: addr}
}

func (r *Reader) Error() error {
	return r.error
}

func (r *Reader) Reset() {
	r.error = nil
}

func (r *Reader) Read(reg uint8, n int) ([]byte, error) {
	res := make([]byte, n)
	if err := r.bus.Read(r.ctx, r.addr, reg, res); err != nil {
		return nil, fmt.Errorf("read register 0x%02x: %w", reg, err)
	}
	return res, nil
}

func (r *Reader) Byte(reg uint8) uint8 {
	if r.error != nil {
		return 0
	}
	data, err := r.Read(reg, 1)
	if err != nil {
		r.error = err
		return 0
	}
	return data[0]
}

// Unsigned reads n little endian bytes starting at reg.
func (r *Reader) Unsigned(reg uint8, n int) uint32 {
	if r.error != nil {
		return 0
	}
	data, err := r.Read(reg, n)
	if err != nil {
		r.error = err
		return 0
	}
	return Unsigned(data)
}

// Unsigned assembles up to four little endian bytes, lowest address first.
func Unsigned(data []byte) uint32 {
	var res uint32
	for i := len(data) - 1; i >= 0; i-- {
		res <<= 8
		res |= uint32(data[i])
	}
	return res
}

// Signed is Unsigned with the top bit of the last byte taken as the sign.
func Signed(data []byte) int32 {
	res := int32(int8(data[len(data)-1]))
	for i := len(data) - 2; i >= 0; i-- {
		res <<= 8
		res |= int32(data[i])
	}
	return res
}
