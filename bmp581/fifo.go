package bmp581

import (
	"context"
	"fmt"
)

// Frame is one FIFO entry. Only the channels selected in the FIFO
// configuration are present.
type Frame struct {
	Frames      FrameSelection
	Temperature RawSample
	Pressure    RawSample
}

func (f Frame) HasTemperature() bool {
	return f.Frames == FramesTemperature || f.Frames == FramesBoth
}

func (f Frame) HasPressure() bool {
	return f.Frames == FramesPressure || f.Frames == FramesBoth
}

// parseFIFO splits FIFO data into frames, stopping at the first empty
// frame. Frames holding both channels carry temperature first.
func parseFIFO(data []byte, sel FrameSelection) ([]Frame, error) {
	size := sel.Size()
	if size == 0 {
		return nil, nil
	}
	if len(data)%size != 0 {
		return nil, &EncodingError{Reg: RegFIFOData, Reason: fmt.Sprintf("%d bytes is not a whole number of %d byte frames", len(data), size)}
	}

	frames := make([]Frame, 0, len(data)/size)
	for off := 0; off < len(data); off += size {
		var first RawSample
		first.Unmarshal(data[off : off+3])
		if first.empty() {
			break
		}
		f := Frame{Frames: sel}
		switch sel {
		case FramesTemperature:
			f.Temperature = first
		case FramesPressure:
			f.Pressure = first
		case FramesBoth:
			f.Temperature = first
			f.Pressure.Unmarshal(data[off+3 : off+6])
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// ReadFIFOCount returns the number of frames in the FIFO.
func (d *Dev) ReadFIFOCount(ctx context.Context) (uint8, error) {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.readFIFOCount(ctx)
}

func (d *Dev) readFIFOCount(ctx context.Context) (uint8, error) {
	data, err := d.read(ctx, "read fifo count", RegFIFOCount, 1)
	if err != nil {
		return 0, err
	}
	n := data[0] & 0x3f
	d.cache.FIFOCount = ptr(n)
	return n, nil
}

// ReadFIFOData drains the frames currently in the FIFO. The last frame's
// samples are converted and cached as the current pressure and temperature.
func (d *Dev) ReadFIFOData(ctx context.Context) ([]Frame, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	if d.cache.FIFO == nil {
		if _, err := d.readFIFOConfig(ctx); err != nil {
			return nil, err
		}
	}
	sel := d.cache.FIFO.Frames
	if sel == FramesDisabled {
		return nil, nil
	}

	n, err := d.readFIFOCount(ctx)
	if err != nil || n == 0 {
		return nil, err
	}

	data, err := d.read(ctx, "read fifo data", RegFIFOData, int(n)*sel.Size())
	if err != nil {
		return nil, err
	}
	frames, err := parseFIFO(data, sel)
	if err != nil || len(frames) == 0 {
		return frames, err
	}

	last := frames[len(frames)-1]
	var cache DeviceState
	if last.HasTemperature() {
		t, err := d.conv.Temperature(last.Temperature.Raw())
		if err != nil {
			return nil, err
		}
		cache.Temperature = ptr(t)
	}
	if last.HasPressure() {
		p, err := d.conv.Pressure(last.Pressure.Raw())
		if err != nil {
			return nil, err
		}
		cache.Pressure = ptr(p)
	}
	if cache.Temperature != nil {
		d.cache.Temperature = cache.Temperature
	}
	if cache.Pressure != nil {
		d.cache.Pressure = cache.Pressure
	}
	return frames, nil
}
