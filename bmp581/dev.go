package bmp581

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/calmh/baro/i2c"
	"github.com/calmh/baro/sensor"
	"periph.io/x/conn/v3/physic"
)

type State int

const (
	Uninitialized State = iota
	Validating
	Configured // validated and startup configuration applied, in standby
	StateStandby
	StateNormal
	StateForced
	StateContinuous
	Faulted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Validating:
		return "validating"
	case Configured:
		return "configured"
	case StateStandby:
		return "standby"
	case StateNormal:
		return "normal"
	case StateForced:
		return "forced"
	case StateContinuous:
		return "continuous"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// configurable reports whether register groups may be written.
func (s State) configurable() bool {
	return s >= Configured && s <= StateContinuous
}

func stateFor(m PowerMode) State {
	switch m {
	case Normal:
		return StateNormal
	case Forced:
		return StateForced
	case Continuous:
		return StateContinuous
	default:
		return StateStandby
	}
}

// DeviceState is the driver's view of the device. A nil field has not been
// read or written successfully yet.
type DeviceState struct {
	ChipID          *uint8
	Revision        *uint8
	Status          *Status
	InterruptStatus *InterruptStatus
	ChipStatus      *ChipStatus
	EffectiveOSR    *EffectiveOSR
	PowerMode       *PowerMode
	FIFOCount       *uint8
	Pressure        *physic.Pressure
	Temperature     *physic.Temperature

	ODR       *ODRConfig
	OSR       *OSRConfig
	OOR       *OORConfig
	DSP       *DSPConfig
	FIFO      *FIFOConfig
	Interrupt *InterruptConfig
	Drive     *DriveConfig
}

func ptr[T any](v T) *T {
	return &v
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

func (s DeviceState) clone() DeviceState {
	return DeviceState{
		ChipID:          clone(s.ChipID),
		Revision:        clone(s.Revision),
		Status:          clone(s.Status),
		InterruptStatus: clone(s.InterruptStatus),
		ChipStatus:      clone(s.ChipStatus),
		EffectiveOSR:    clone(s.EffectiveOSR),
		PowerMode:       clone(s.PowerMode),
		FIFOCount:       clone(s.FIFOCount),
		Pressure:        clone(s.Pressure),
		Temperature:     clone(s.Temperature),
		ODR:             clone(s.ODR),
		OSR:             clone(s.OSR),
		OOR:             clone(s.OOR),
		DSP:             clone(s.DSP),
		FIFO:            clone(s.FIFO),
		Interrupt:       clone(s.Interrupt),
		Drive:           clone(s.Drive),
	}
}

// Opts holds the configuration options for the device.
type Opts struct {
	Address   uint16
	Converter Converter
	// NVM commands are polled for completion this often, at most
	// NVMPollLimit times.
	NVMPollInterval time.Duration
	NVMPollLimit    int
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Address:         AddressPrimary,
	Converter:       DatasheetConverter{},
	NVMPollInterval: time.Millisecond,
	NVMPollLimit:    20,
}

// Dev is a handle to one BMP581.
//
// Every method that touches the bus blocks until its transfers have completed
// or failed; wrap the bus in an i2c.Serial to bound that wait. Calls on one
// Dev are serialized.
type Dev struct {
	bus    i2c.Bus
	sensor sensor.I2C
	conv   Converter
	opts   Opts

	mut   sync.Mutex
	state State
	cache DeviceState
}

// New returns a driver for the device at opts.Address on bus. It does no I/O;
// call Initialize before use.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Address != AddressPrimary && opts.Address != AddressSecondary {
		return nil, fmt.Errorf("bmp581: invalid address 0x%02x", opts.Address)
	}
	o := *opts
	if o.Converter == nil {
		o.Converter = DatasheetConverter{}
	}
	if o.NVMPollLimit <= 0 {
		o.NVMPollLimit = DefaultOpts.NVMPollLimit
	}
	return &Dev{
		bus: bus,
		sensor: sensor.I2C{
			Descriptor: sensor.Descriptor{Name: "BMP581", Quantity: sensor.Pressure, Unit: sensor.Pascal},
			Address:    o.Address,
			RegWidth:   RegisterWidth,
		},
		conv: o.Converter,
		opts: o,
	}, nil
}

func (d *Dev) String() string {
	return d.sensor.String()
}

// Sensor describes the device.
func (d *Dev) Sensor() sensor.I2C {
	return d.sensor
}

func (d *Dev) State() State {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.state
}

// DeviceState returns a copy of the cached device state.
func (d *Dev) DeviceState() DeviceState {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.cache.clone()
}

// ChipID returns the chip id read by Initialize.
func (d *Dev) ChipID() (uint8, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()
	if d.cache.ChipID == nil {
		return 0, false
	}
	return *d.cache.ChipID, true
}

// ChipRevision returns the revision read by Initialize.
func (d *Dev) ChipRevision() (uint8, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()
	if d.cache.Revision == nil {
		return 0, false
	}
	return *d.cache.Revision, true
}

// Pressure returns the last pressure read, without I/O.
func (d *Dev) Pressure() (physic.Pressure, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()
	if d.cache.Pressure == nil {
		return 0, false
	}
	return *d.cache.Pressure, true
}

// Temperature returns the last temperature read, without I/O.
func (d *Dev) Temperature() (physic.Temperature, bool) {
	d.mut.Lock()
	defer d.mut.Unlock()
	if d.cache.Temperature == nil {
		return 0, false
	}
	return *d.cache.Temperature, true
}

// Initialize validates the device identity and readiness and applies the
// startup configuration. The device must be in standby.
//
// On any failure the driver ends up Faulted; SoftReset brings it back to
// Uninitialized.
func (d *Dev) Initialize(ctx context.Context) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if d.state != Uninitialized {
		return &TransitionError{Op: "initialize", State: d.state}
	}
	d.state = Validating

	r := i2c.NewReader(ctx, d.bus, d.sensor.Address)
	chipID := r.Byte(RegChipID)
	rev := r.Byte(RegRevID)
	status := r.Byte(RegStatus)
	intStatus := r.Byte(RegIntStatus)
	odr := r.Byte(RegODRConfig)
	if err := r.Error(); err != nil {
		d.state = Faulted
		return &TransportError{Op: "initialize", Err: err}
	}

	d.cache.ChipID = ptr(chipID)
	d.cache.Revision = ptr(rev)
	var st Status
	st.Unmarshal([]byte{status})
	d.cache.Status = &st
	var is InterruptStatus
	is.Unmarshal([]byte{intStatus})
	d.cache.InterruptStatus = &is
	var oc ODRConfig
	oc.Unmarshal([]byte{odr})
	d.cache.ODR = &oc
	d.cache.PowerMode = ptr(oc.Mode)

	var failed *InitError
	switch {
	case chipID != ChipID:
		failed = &InitError{Check: CheckChipID, Got: chipID}
	case rev != ChipRevision:
		failed = &InitError{Check: CheckRevision, Got: rev}
	case intStatus != IntStatusReady:
		failed = &InitError{Check: CheckInterruptStatus, Got: intStatus}
	case status&StatusReadyMask == 0:
		failed = &InitError{Check: CheckStatus, Got: status}
	case oc.Mode != Standby:
		failed = &InitError{Check: CheckPowerMode, Got: odr}
	}
	if failed != nil {
		d.state = Faulted
		return failed
	}

	d.state = Configured
	if err := d.startup(ctx); err != nil {
		d.state = Faulted
		return err
	}
	return nil
}

type startupStep struct {
	name  string
	reg   uint8
	value byte
	done  func()
}

// startupSteps is the configuration applied by Initialize, in the order it
// must reach the device.
func (d *Dev) startupSteps() []startupStep {
	osr := OSRConfig{Temperature: Sampling1X, Pressure: Sampling1X, PressureEnabled: true}
	odr := ODRConfig{Mode: Standby, Rate: Odr240}
	fifo := FIFOConfig{Frames: FramesBoth, Decimation: Decimation1, StopOnFull: true}
	intr := InterruptConfig{FIFOFull: true, ActiveHigh: true, OpenDrain: true, Enabled: true}
	fb := fifo.Marshal()
	ib := intr.Marshal()

	return []startupStep{
		{"enable pressure measurement", RegOSRConfig, osr.Marshal()[0], func() { d.cache.OSR = &osr }},
		{"set output data rate", RegODRConfig, odr.Marshal()[0], func() {
			d.cache.ODR = &odr
			d.cache.PowerMode = ptr(odr.Mode)
		}},
		{"select fifo frames", RegFIFOSel, fb[1], nil},
		{"set fifo stop on full", RegFIFOConfig, fb[0], func() { d.cache.FIFO = &fifo }},
		{"configure interrupt pin", RegIntConfig, ib[0], nil},
		{"enable interrupt sources", RegIntSource, ib[1], func() { d.cache.Interrupt = &intr }},
	}
}

func (d *Dev) startup(ctx context.Context) error {
	for i, step := range d.startupSteps() {
		if err := d.write(ctx, step.name, step.reg, step.value); err != nil {
			return &StartupError{Step: i + 1, Name: step.name, Err: err}
		}
		if step.done != nil {
			step.done()
		}
	}
	return nil
}

// StartMeasurements puts a configured device in normal mode, sampling at the
// configured output data rate.
func (d *Dev) StartMeasurements(ctx context.Context) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if d.state != Configured && d.state != StateStandby {
		return &TransitionError{Op: "start measurements", State: d.state}
	}
	return d.setPowerMode(ctx, Normal)
}

// SetPowerMode changes the power mode, keeping the output data rate. Changes
// between two non-standby modes go through standby.
func (d *Dev) SetPowerMode(ctx context.Context, mode PowerMode) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if !d.state.configurable() {
		return &TransitionError{Op: "set power mode", State: d.state}
	}
	if mode > Continuous {
		return invalid("power mode")
	}
	return d.setPowerMode(ctx, mode)
}

func (d *Dev) setPowerMode(ctx context.Context, mode PowerMode) error {
	if err := d.viaStandby(ctx, "set power mode", mode); err != nil {
		return err
	}

	next := *d.cache.ODR
	next.Mode = mode
	if err := d.write(ctx, "set power mode", RegODRConfig, next.Marshal()[0]); err != nil {
		return err
	}
	d.cache.ODR = &next
	d.cache.PowerMode = ptr(mode)
	d.state = stateFor(mode)
	return nil
}

// viaStandby puts the device in standby first when going from one
// non-standby mode to another. It leaves the current ODR configuration
// cached.
func (d *Dev) viaStandby(ctx context.Context, op string, mode PowerMode) error {
	if d.cache.ODR == nil {
		if _, err := d.readODRConfig(ctx); err != nil {
			return err
		}
	}
	cur := *d.cache.ODR
	if cur.Mode == Standby || mode == Standby || cur.Mode == mode {
		return nil
	}

	standby := cur
	standby.Mode = Standby
	if err := d.write(ctx, op, RegODRConfig, standby.Marshal()[0]); err != nil {
		return err
	}
	d.cache.ODR = &standby
	d.cache.PowerMode = ptr(Standby)
	d.state = StateStandby
	return nil
}

// modeChanged follows the power mode the device reports or was given.
// Standby keeps a freshly configured device Configured.
func (d *Dev) modeChanged(mode PowerMode) {
	if !d.state.configurable() {
		return
	}
	if d.state == Configured && mode == Standby {
		return
	}
	d.state = stateFor(mode)
}

// WriteCommand writes cmd to the command register. A soft reset behaves as
// SoftReset; NVM commands need the device in standby.
func (d *Dev) WriteCommand(ctx context.Context, cmd Command) error {
	if !cmd.valid() {
		return fmt.Errorf("%w: unknown command 0x%02x", ErrInvalidConfig, byte(cmd))
	}
	if cmd == CmdSoftReset {
		return d.SoftReset(ctx)
	}

	d.mut.Lock()
	defer d.mut.Unlock()
	// The remaining commands all drive the NVM.
	if err := d.nvmAllowed("write command"); err != nil {
		return err
	}
	return d.write(ctx, "write command", RegCmd, byte(cmd))
}

// SoftReset resets the device to its power-on configuration and forgets all
// cached state. It is allowed in any state.
func (d *Dev) SoftReset(ctx context.Context) error {
	d.mut.Lock()
	defer d.mut.Unlock()

	if err := d.write(ctx, "soft reset", RegCmd, byte(CmdSoftReset)); err != nil {
		return err
	}
	d.cache = DeviceState{}
	d.state = Uninitialized

	// t_soft_res
	return sleep(ctx, 2*time.Millisecond)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dev) read(ctx context.Context, op string, reg uint8, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := d.bus.Read(ctx, d.sensor.Address, reg, buf); err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("%s: read register 0x%02x", op, reg), Err: err}
	}
	return buf, nil
}

func (d *Dev) write(ctx context.Context, op string, reg uint8, val byte) error {
	if err := d.bus.Write(ctx, d.sensor.Address, reg, []byte{val}); err != nil {
		return &TransportError{Op: fmt.Sprintf("%s: write register 0x%02x", op, reg), Err: err}
	}
	return nil
}
