package bmp581

import (
	"context"
)

// Register groups are written one register at a time in ascending order and
// cached only once every write has succeeded. Reads are a single burst and
// are cached only when they decode.

type marshaler interface {
	Marshal() []byte
	validate() error
}

func (d *Dev) configure(ctx context.Context, op string, regs []uint8, c marshaler) error {
	if !d.state.configurable() {
		return &TransitionError{Op: op, State: d.state}
	}
	if err := c.validate(); err != nil {
		return err
	}
	data := c.Marshal()
	for i, reg := range regs {
		if err := d.write(ctx, op, reg, data[i]); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureODR writes the power mode, output data rate and deep standby
// setting in one register. Changes between two non-standby modes go through
// standby, as with SetPowerMode.
func (d *Dev) ConfigureODR(ctx context.Context, c ODRConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if !d.state.configurable() {
		return &TransitionError{Op: "configure odr", State: d.state}
	}
	if err := c.validate(); err != nil {
		return err
	}
	if err := d.viaStandby(ctx, "configure odr", c.Mode); err != nil {
		return err
	}
	if err := d.configure(ctx, "configure odr", []uint8{RegODRConfig}, c); err != nil {
		return err
	}
	d.cache.ODR = ptr(c)
	d.cache.PowerMode = ptr(c.Mode)
	d.modeChanged(c.Mode)
	return nil
}

func (d *Dev) ConfigureOSR(ctx context.Context, c OSRConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.configure(ctx, "configure osr", []uint8{RegOSRConfig}, c); err != nil {
		return err
	}
	d.cache.OSR = ptr(c)
	return nil
}

func (d *Dev) ConfigureOOR(ctx context.Context, c OORConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	regs := []uint8{RegOORThrPLSB, RegOORThrPMSB, RegOORRange, RegOORConfig}
	if err := d.configure(ctx, "configure oor", regs, c); err != nil {
		return err
	}
	d.cache.OOR = ptr(c)
	return nil
}

func (d *Dev) ConfigureDSP(ctx context.Context, c DSPConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.configure(ctx, "configure dsp", []uint8{RegDSPConfig, RegDSPIIR}, c); err != nil {
		return err
	}
	d.cache.DSP = ptr(c)
	return nil
}

func (d *Dev) ConfigureFIFO(ctx context.Context, c FIFOConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.configure(ctx, "configure fifo", []uint8{RegFIFOConfig, RegFIFOSel}, c); err != nil {
		return err
	}
	d.cache.FIFO = ptr(c)
	return nil
}

func (d *Dev) ConfigureInterrupt(ctx context.Context, c InterruptConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.configure(ctx, "configure interrupt", []uint8{RegIntConfig, RegIntSource}, c); err != nil {
		return err
	}
	d.cache.Interrupt = ptr(c)
	return nil
}

func (d *Dev) ConfigureDrive(ctx context.Context, c DriveConfig) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.configure(ctx, "configure drive", []uint8{RegDriveConfig}, c); err != nil {
		return err
	}
	d.cache.Drive = ptr(c)
	return nil
}

func (d *Dev) ReadODRConfig(ctx context.Context) (ODRConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.readODRConfig(ctx)
}

func (d *Dev) readODRConfig(ctx context.Context) (ODRConfig, error) {
	var c ODRConfig
	data, err := d.read(ctx, "read odr config", RegODRConfig, 1)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal(data); err != nil {
		return c, err
	}
	d.cache.ODR = ptr(c)
	d.cache.PowerMode = ptr(c.Mode)
	// Forced mode drops back to standby on its own.
	d.modeChanged(c.Mode)
	return c, nil
}

func (d *Dev) ReadOSRConfig(ctx context.Context) (OSRConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var c OSRConfig
	data, err := d.read(ctx, "read osr config", RegOSRConfig, 1)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal(data); err != nil {
		return c, err
	}
	d.cache.OSR = ptr(c)
	return c, nil
}

func (d *Dev) ReadOORConfig(ctx context.Context) (OORConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var c OORConfig
	data, err := d.read(ctx, "read oor config", RegOORThrPLSB, 4)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal(data); err != nil {
		return c, err
	}
	d.cache.OOR = ptr(c)
	return c, nil
}

func (d *Dev) ReadDSPConfig(ctx context.Context) (DSPConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var c DSPConfig
	data, err := d.read(ctx, "read dsp config", RegDSPConfig, 2)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal(data); err != nil {
		return c, err
	}
	d.cache.DSP = ptr(c)
	return c, nil
}

func (d *Dev) ReadFIFOConfig(ctx context.Context) (FIFOConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.readFIFOConfig(ctx)
}

func (d *Dev) readFIFOConfig(ctx context.Context) (FIFOConfig, error) {
	var c FIFOConfig
	// FIFO_CONFIG, FIFO_COUNT, FIFO_SEL
	data, err := d.read(ctx, "read fifo config", RegFIFOConfig, 3)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal([]byte{data[0], data[2]}); err != nil {
		return c, err
	}
	d.cache.FIFO = ptr(c)
	return c, nil
}

func (d *Dev) ReadInterruptConfig(ctx context.Context) (InterruptConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var c InterruptConfig
	data, err := d.read(ctx, "read interrupt config", RegIntConfig, 2)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal(data); err != nil {
		return c, err
	}
	d.cache.Interrupt = ptr(c)
	return c, nil
}

func (d *Dev) ReadDriveConfig(ctx context.Context) (DriveConfig, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var c DriveConfig
	data, err := d.read(ctx, "read drive config", RegDriveConfig, 1)
	if err != nil {
		return c, err
	}
	if err := c.Unmarshal(data); err != nil {
		return c, err
	}
	d.cache.Drive = ptr(c)
	return c, nil
}

func (d *Dev) ReadEffectiveOSR(ctx context.Context) (EffectiveOSR, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var e EffectiveOSR
	data, err := d.read(ctx, "read effective osr", RegOSREff, 1)
	if err != nil {
		return e, err
	}
	if err := e.Unmarshal(data); err != nil {
		return e, err
	}
	d.cache.EffectiveOSR = ptr(e)
	return e, nil
}

func (d *Dev) ReadStatus(ctx context.Context) (Status, error) {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.readStatus(ctx)
}

func (d *Dev) readStatus(ctx context.Context) (Status, error) {
	var s Status
	data, err := d.read(ctx, "read status", RegStatus, 1)
	if err != nil {
		return s, err
	}
	if err := s.Unmarshal(data); err != nil {
		return s, err
	}
	d.cache.Status = ptr(s)
	return s, nil
}

// ReadIntStatus reads and thereby clears the pending interrupt flags.
func (d *Dev) ReadIntStatus(ctx context.Context) (InterruptStatus, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var s InterruptStatus
	data, err := d.read(ctx, "read interrupt status", RegIntStatus, 1)
	if err != nil {
		return s, err
	}
	if err := s.Unmarshal(data); err != nil {
		return s, err
	}
	d.cache.InterruptStatus = ptr(s)
	return s, nil
}

func (d *Dev) ReadChipStatus(ctx context.Context) (ChipStatus, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	var s ChipStatus
	data, err := d.read(ctx, "read chip status", RegChipStatus, 1)
	if err != nil {
		return s, err
	}
	if err := s.Unmarshal(data); err != nil {
		return s, err
	}
	d.cache.ChipStatus = ptr(s)
	return s, nil
}
