package bmp581

import (
	"context"
	"errors"
	"testing"
)

func TestParseFIFO(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		sel    FrameSelection
		frames []Frame
	}{
		{"disabled", []byte{1, 2, 3}, FramesDisabled, nil},
		{"empty", nil, FramesBoth, []Frame{}},
		{
			"pressure",
			[]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
			FramesPressure,
			[]Frame{
				{Frames: FramesPressure, Pressure: RawSample{0x01, 0x02, 0x03}},
				{Frames: FramesPressure, Pressure: RawSample{0x04, 0x05, 0x06}},
			},
		},
		{
			"temperature",
			[]byte{0x01, 0x02, 0x03},
			FramesTemperature,
			[]Frame{{Frames: FramesTemperature, Temperature: RawSample{0x01, 0x02, 0x03}}},
		},
		{
			"both, temperature first",
			[]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
			FramesBoth,
			[]Frame{{Frames: FramesBoth, Temperature: RawSample{0x01, 0x02, 0x03}, Pressure: RawSample{0x04, 0x05, 0x06}}},
		},
		{
			"stops at empty frame",
			[]byte{0x01, 0x02, 0x03, 0x7f, 0x7f, 0x7f, 0x04, 0x05, 0x06},
			FramesPressure,
			[]Frame{{Frames: FramesPressure, Pressure: RawSample{0x01, 0x02, 0x03}}},
		},
	}

	for _, tc := range cases {
		res, err := parseFIFO(tc.data, tc.sel)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if len(res) != len(tc.frames) {
			t.Errorf("%s: %d frames, expected %d", tc.name, len(res), len(tc.frames))
			continue
		}
		for i := range res {
			if res[i] != tc.frames[i] {
				t.Errorf("%s: frame %d is %+v, expected %+v", tc.name, i, res[i], tc.frames[i])
			}
		}
	}

	if _, err := parseFIFO([]byte{1, 2, 3, 4}, FramesBoth); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("partial frame gave %v", err)
	}
}

func TestReadFIFOData(t *testing.T) {
	d, bus := newConfigured(t)
	ctx := context.Background()

	bus.regs[RegFIFOCount] = 0xc2 // upper bits are not part of the count
	bus.fifo = []byte{
		0x00, 0x00, 0x14, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x19, 0x40, 0xf3, 0x62,
	}

	frames, err := d.ReadFIFOData(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("%d frames, expected 2", len(frames))
	}
	if !frames[1].HasTemperature() || !frames[1].HasPressure() {
		t.Errorf("frame lacks a channel: %+v", frames[1])
	}
	if tp, ok := d.Temperature(); !ok || Celsius(tp) != 25 {
		t.Errorf("temperature %v, %v", tp, ok)
	}
	if p, ok := d.Pressure(); !ok || Pascal(p) != 101325 {
		t.Errorf("pressure %v, %v", p, ok)
	}
	if st := d.DeviceState(); st.FIFOCount == nil || *st.FIFOCount != 2 {
		t.Errorf("fifo count not cached")
	}
}

func TestReadFIFODataPressureOnly(t *testing.T) {
	d, bus := newConfigured(t)
	ctx := context.Background()

	if err := d.ConfigureFIFO(ctx, FIFOConfig{Frames: FramesPressure}); err != nil {
		t.Fatal(err)
	}
	bus.regs[RegFIFOCount] = 1
	bus.fifo = []byte{0x40, 0xf3, 0x62}

	frames, err := d.ReadFIFOData(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || frames[0].HasTemperature() {
		t.Errorf("unexpected frames %+v", frames)
	}
	if _, ok := d.Temperature(); ok {
		t.Error("temperature cached from a pressure only frame")
	}
	if last := bus.log[len(bus.log)-1]; last.reg != RegFIFOData {
		t.Errorf("last read from 0x%02x", last.reg)
	}
}

func TestReadFIFODataEmpty(t *testing.T) {
	d, bus := newConfigured(t)
	bus.regs[RegFIFOCount] = 0

	frames, err := d.ReadFIFOData(context.Background())
	if err != nil || len(frames) != 0 {
		t.Errorf("got %v, %v for an empty fifo", frames, err)
	}
	for _, tr := range bus.log {
		if tr.reg == RegFIFOData {
			t.Error("fifo data read although the count was zero")
		}
	}
}
