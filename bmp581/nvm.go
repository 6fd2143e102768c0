package bmp581

import (
	"context"
	"fmt"

	"github.com/calmh/baro/i2c"
)

// NVM rows 0x20 to 0x22 are free for the user; the others hold trim values.

func (d *Dev) nvmAllowed(op string) error {
	if d.state != Configured && d.state != StateStandby {
		return &TransitionError{Op: op, State: d.state}
	}
	return nil
}

func (d *Dev) checkNVM(op string, row uint8) error {
	if err := d.nvmAllowed(op); err != nil {
		return err
	}
	if row < nvmFirstUserRow || row > nvmLastUserRow {
		return fmt.Errorf("%w: nvm row 0x%02x is not a user row", ErrInvalidConfig, row)
	}
	return nil
}

// ReadNVM reads one user row. The device must be in standby.
func (d *Dev) ReadNVM(ctx context.Context, row uint8) (uint16, error) {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.checkNVM("read nvm", row); err != nil {
		return 0, err
	}
	if err := d.nvmCommand(ctx, "read nvm", nvmAddress{Row: row}, CmdNVMRead); err != nil {
		return 0, err
	}

	r := i2c.NewReader(ctx, d.bus, d.sensor.Address)
	v := uint16(r.Unsigned(RegNVMDataLSB, 2))
	if err := r.Error(); err != nil {
		return 0, &TransportError{Op: "read nvm", Err: err}
	}
	return v, nil
}

// WriteNVM programs one user row. The device must be in standby.
func (d *Dev) WriteNVM(ctx context.Context, row uint8, value uint16) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.checkNVM("write nvm", row); err != nil {
		return err
	}
	lsb, msb := byte(value), byte(value>>8)
	if err := d.write(ctx, "write nvm", RegNVMDataLSB, lsb); err != nil {
		return err
	}
	if err := d.write(ctx, "write nvm", RegNVMDataMSB, msb); err != nil {
		return err
	}
	err := d.nvmCommand(ctx, "write nvm", nvmAddress{Row: row, ProgramEnable: true}, CmdNVMWrite)

	// Leave programming disabled whatever happened.
	if werr := d.write(ctx, "write nvm", RegNVMAddr, nvmAddress{Row: row}.Marshal()[0]); err == nil {
		err = werr
	}
	return err
}

func (d *Dev) nvmCommand(ctx context.Context, op string, addr nvmAddress, cmd Command) error {
	if err := d.write(ctx, op, RegNVMAddr, addr.Marshal()[0]); err != nil {
		return err
	}
	if err := d.write(ctx, op, RegCmd, byte(CmdNVMFirst)); err != nil {
		return err
	}
	if err := d.write(ctx, op, RegCmd, byte(cmd)); err != nil {
		return err
	}
	return d.waitNVM(ctx, op)
}

func (d *Dev) waitNVM(ctx context.Context, op string) error {
	for i := 0; i < d.opts.NVMPollLimit; i++ {
		if err := sleep(ctx, d.opts.NVMPollInterval); err != nil {
			return err
		}
		s, err := d.readStatus(ctx)
		if err != nil {
			return err
		}
		if !s.NVMReady {
			continue
		}
		if s.NVMError || s.NVMCommandError {
			return fmt.Errorf("%w: %s: status %+v", ErrNVM, op, s)
		}
		return nil
	}
	return fmt.Errorf("%w: %s: not ready after %d polls", ErrNVM, op, d.opts.NVMPollLimit)
}
