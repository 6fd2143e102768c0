package bmp581

import (
	"context"

	"periph.io/x/conn/v3/physic"
)

// ReadPressData reads the pressure data registers and caches the converted
// pressure.
func (d *Dev) ReadPressData(ctx context.Context) (RawSample, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var s RawSample
	data, err := d.read(ctx, "read pressure data", RegPressDataXLSB, 3)
	if err != nil {
		return s, err
	}
	if err := s.Unmarshal(data); err != nil {
		return s, err
	}
	p, err := d.conv.Pressure(s.Raw())
	if err != nil {
		return s, err
	}
	d.cache.Pressure = ptr(p)
	return s, nil
}

// ReadTempData reads the temperature data registers and caches the converted
// temperature.
func (d *Dev) ReadTempData(ctx context.Context) (RawSample, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var s RawSample
	data, err := d.read(ctx, "read temperature data", RegTempDataXLSB, 3)
	if err != nil {
		return s, err
	}
	if err := s.Unmarshal(data); err != nil {
		return s, err
	}
	t, err := d.conv.Temperature(s.Raw())
	if err != nil {
		return s, err
	}
	d.cache.Temperature = ptr(t)
	return s, nil
}

// Sense reads temperature and pressure in one burst, so both come from the
// same sample. Fields of e other than Temperature and Pressure are left
// alone.
func (d *Dev) Sense(ctx context.Context, e *physic.Env) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	// Temperature 0x1D~0x1F, pressure 0x20~0x22
	data, err := d.read(ctx, "sense", RegTempDataXLSB, 6)
	if err != nil {
		return err
	}
	var ts, ps RawSample
	ts.Unmarshal(data[:3])
	ps.Unmarshal(data[3:])
	t, err := d.conv.Temperature(ts.Raw())
	if err != nil {
		return err
	}
	p, err := d.conv.Pressure(ps.Raw())
	if err != nil {
		return err
	}
	d.cache.Temperature = ptr(t)
	d.cache.Pressure = ptr(p)
	e.Temperature = t
	e.Pressure = p
	return nil
}
