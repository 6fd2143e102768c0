package bmp581

import (
	"fmt"

	"github.com/calmh/baro/i2c"
)

// Each configuration group marshals to the bytes of its registers in
// ascending register order. Reserved bits are written as zero and a set
// reserved bit is rejected on unmarshal.

func bit(v bool, n uint) byte {
	if v {
		return 1 << n
	}
	return 0
}

func short(reg uint8, want, got int) error {
	return &EncodingError{Reg: reg, Reason: fmt.Sprintf("too short: %d of %d bytes", got, want)}
}

func reserved(reg uint8, b, mask byte) error {
	if b&mask != 0 {
		return &EncodingError{Reg: reg, Value: b, Reason: fmt.Sprintf("reserved bits 0x%02x set", b&mask)}
	}
	return nil
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s out of range", ErrInvalidConfig, field)
}

// ODRConfig is the ODR_CONFIG register.
type ODRConfig struct {
	Mode                PowerMode
	Rate                OutputDataRate
	DeepStandbyDisabled bool
}

func (c ODRConfig) Marshal() []byte {
	return []byte{byte(c.Mode)&0x03 | (byte(c.Rate)&0x1f)<<2 | bit(c.DeepStandbyDisabled, 7)}
}

func (c *ODRConfig) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegODRConfig, 1, len(data))
	}
	b := data[0]
	*c = ODRConfig{
		Mode:                PowerMode(b & 0x03),
		Rate:                OutputDataRate((b >> 2) & 0x1f),
		DeepStandbyDisabled: b&0x80 != 0,
	}
	return nil
}

func (c ODRConfig) validate() error {
	switch {
	case c.Mode > Continuous:
		return invalid("power mode")
	case c.Rate > Odr0p125:
		return invalid("output data rate")
	}
	return nil
}

// OSRConfig is the OSR_CONFIG register.
type OSRConfig struct {
	Temperature     Oversampling
	Pressure        Oversampling
	PressureEnabled bool
}

func (c OSRConfig) Marshal() []byte {
	return []byte{byte(c.Temperature)&0x07 | (byte(c.Pressure)&0x07)<<3 | bit(c.PressureEnabled, 6)}
}

func (c *OSRConfig) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegOSRConfig, 1, len(data))
	}
	b := data[0]
	if err := reserved(RegOSRConfig, b, 0x80); err != nil {
		return err
	}
	*c = OSRConfig{
		Temperature:     Oversampling(b & 0x07),
		Pressure:        Oversampling((b >> 3) & 0x07),
		PressureEnabled: b&0x40 != 0,
	}
	return nil
}

func (c OSRConfig) validate() error {
	if c.Temperature > Sampling128X || c.Pressure > Sampling128X {
		return invalid("oversampling")
	}
	return nil
}

// OORConfig covers the out of range registers OOR_THR_P_LSB through
// OOR_CONFIG. The threshold is seventeen bits wide when ThresholdBit16 is
// set.
type OORConfig struct {
	Threshold      uint16
	ThresholdBit16 bool
	Range          uint8
	CountLimit     CountLimit
}

func splitThreshold(v uint16) (lsb, msb byte) {
	return byte(v), byte(v >> 8)
}

func joinThreshold(lsb, msb byte) uint16 {
	return uint16(i2c.Unsigned([]byte{lsb, msb}))
}

func (c OORConfig) Marshal() []byte {
	lsb, msb := splitThreshold(c.Threshold)
	return []byte{lsb, msb, c.Range, bit(c.ThresholdBit16, 0) | (byte(c.CountLimit)&0x03)<<6}
}

func (c *OORConfig) Unmarshal(data []byte) error {
	if len(data) < 4 {
		return short(RegOORThrPLSB, 4, len(data))
	}
	if err := reserved(RegOORConfig, data[3], 0x3e); err != nil {
		return err
	}
	*c = OORConfig{
		Threshold:      joinThreshold(data[0], data[1]),
		ThresholdBit16: data[3]&0x01 != 0,
		Range:          data[2],
		CountLimit:     CountLimit(data[3] >> 6),
	}
	return nil
}

func (c OORConfig) validate() error {
	if c.CountLimit > Count15 {
		return invalid("count limit")
	}
	return nil
}

// DSPConfig covers DSP_CONFIG and DSP_IIR.
type DSPConfig struct {
	TemperatureIIR IIRCoefficient
	PressureIIR    IIRCoefficient
	Compensation   Compensation

	FlushForced          bool // flush the IIR filter in forced mode
	ShadowIIRTemperature bool // data registers get filtered temperature
	FIFOIIRTemperature   bool // FIFO gets filtered temperature
	ShadowIIRPressure    bool
	FIFOIIRPressure      bool
	OORIIRPressure       bool // out of range detection uses filtered pressure
}

func (c DSPConfig) Marshal() []byte {
	cfg := byte(c.Compensation)&0x03 |
		bit(c.FlushForced, 2) |
		bit(c.ShadowIIRTemperature, 3) |
		bit(c.FIFOIIRTemperature, 4) |
		bit(c.ShadowIIRPressure, 5) |
		bit(c.FIFOIIRPressure, 6) |
		bit(c.OORIIRPressure, 7)
	iir := byte(c.TemperatureIIR)&0x07 | (byte(c.PressureIIR)&0x07)<<3
	return []byte{cfg, iir}
}

func (c *DSPConfig) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return short(RegDSPConfig, 2, len(data))
	}
	cfg, iir := data[0], data[1]
	if err := reserved(RegDSPIIR, iir, 0xc0); err != nil {
		return err
	}
	*c = DSPConfig{
		TemperatureIIR:       IIRCoefficient(iir & 0x07),
		PressureIIR:          IIRCoefficient((iir >> 3) & 0x07),
		Compensation:         Compensation(cfg & 0x03),
		FlushForced:          cfg&0x04 != 0,
		ShadowIIRTemperature: cfg&0x08 != 0,
		FIFOIIRTemperature:   cfg&0x10 != 0,
		ShadowIIRPressure:    cfg&0x20 != 0,
		FIFOIIRPressure:      cfg&0x40 != 0,
		OORIIRPressure:       cfg&0x80 != 0,
	}
	return nil
}

func (c DSPConfig) validate() error {
	switch {
	case c.TemperatureIIR > Coeff127 || c.PressureIIR > Coeff127:
		return invalid("iir coefficient")
	case c.Compensation > CompensateBoth:
		return invalid("compensation")
	}
	return nil
}

// FIFOConfig covers FIFO_CONFIG and FIFO_SEL. The two registers are not
// adjacent; Marshal returns them in that order.
type FIFOConfig struct {
	Frames     FrameSelection
	Decimation Decimation
	Threshold  uint8 // frames, zero disables the threshold interrupt
	StopOnFull bool  // otherwise the oldest frames are overwritten
}

func (c FIFOConfig) Marshal() []byte {
	cfg := c.Threshold&0x1f | bit(c.StopOnFull, 5)
	sel := byte(c.Frames)&0x03 | (byte(c.Decimation)&0x07)<<2
	return []byte{cfg, sel}
}

func (c *FIFOConfig) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return short(RegFIFOConfig, 2, len(data))
	}
	cfg, sel := data[0], data[1]
	if err := reserved(RegFIFOConfig, cfg, 0xc0); err != nil {
		return err
	}
	if err := reserved(RegFIFOSel, sel, 0xe0); err != nil {
		return err
	}
	*c = FIFOConfig{
		Frames:     FrameSelection(sel & 0x03),
		Decimation: Decimation((sel >> 2) & 0x07),
		Threshold:  cfg & 0x1f,
		StopOnFull: cfg&0x20 != 0,
	}
	return nil
}

func (c FIFOConfig) validate() error {
	switch {
	case c.Frames > FramesBoth:
		return invalid("frame selection")
	case c.Decimation > Decimation128:
		return invalid("decimation")
	case c.Threshold > maxFIFOThreshold:
		return invalid("fifo threshold")
	}
	return nil
}

// InterruptConfig covers INT_CONFIG and INT_SOURCE.
type InterruptConfig struct {
	DataReady     bool
	FIFOFull      bool
	FIFOThreshold bool
	OutOfRange    bool

	Latched    bool // otherwise pulsed
	ActiveHigh bool
	OpenDrain  bool
	Enabled    bool
	PadDrive   uint8 // 0-15
}

func (c InterruptConfig) Marshal() []byte {
	cfg := bit(c.Latched, 0) |
		bit(c.ActiveHigh, 1) |
		bit(c.OpenDrain, 2) |
		bit(c.Enabled, 3) |
		(c.PadDrive&0x0f)<<4
	src := bit(c.DataReady, 0) |
		bit(c.FIFOFull, 1) |
		bit(c.FIFOThreshold, 2) |
		bit(c.OutOfRange, 3)
	return []byte{cfg, src}
}

func (c *InterruptConfig) Unmarshal(data []byte) error {
	if len(data) < 2 {
		return short(RegIntConfig, 2, len(data))
	}
	cfg, src := data[0], data[1]
	if err := reserved(RegIntSource, src, 0xf0); err != nil {
		return err
	}
	*c = InterruptConfig{
		DataReady:     src&0x01 != 0,
		FIFOFull:      src&0x02 != 0,
		FIFOThreshold: src&0x04 != 0,
		OutOfRange:    src&0x08 != 0,
		Latched:       cfg&0x01 != 0,
		ActiveHigh:    cfg&0x02 != 0,
		OpenDrain:     cfg&0x04 != 0,
		Enabled:       cfg&0x08 != 0,
		PadDrive:      cfg >> 4,
	}
	return nil
}

func (c InterruptConfig) validate() error {
	if c.PadDrive > maxPadDriveStrength {
		return invalid("interrupt pad drive")
	}
	return nil
}

// DriveConfig is the DRIVE_CONFIG register.
type DriveConfig struct {
	I2CPullUp bool // CSB pull-up while in I2C mode
	SPI3Wire  bool
	PadDrive  uint8 // 0-15
}

func (c DriveConfig) Marshal() []byte {
	return []byte{bit(c.I2CPullUp, 0) | bit(c.SPI3Wire, 1) | (c.PadDrive&0x0f)<<4}
}

func (c *DriveConfig) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegDriveConfig, 1, len(data))
	}
	b := data[0]
	if err := reserved(RegDriveConfig, b, 0x0c); err != nil {
		return err
	}
	*c = DriveConfig{
		I2CPullUp: b&0x01 != 0,
		SPI3Wire:  b&0x02 != 0,
		PadDrive:  b >> 4,
	}
	return nil
}

func (c DriveConfig) validate() error {
	if c.PadDrive > maxPadDriveStrength {
		return invalid("interface pad drive")
	}
	return nil
}

type nvmAddress struct {
	Row           uint8
	ProgramEnable bool
}

func (a nvmAddress) Marshal() []byte {
	return []byte{a.Row&0x3f | bit(a.ProgramEnable, 6)}
}

func (a *nvmAddress) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegNVMAddr, 1, len(data))
	}
	if err := reserved(RegNVMAddr, data[0], 0x80); err != nil {
		return err
	}
	*a = nvmAddress{Row: data[0] & 0x3f, ProgramEnable: data[0]&0x40 != 0}
	return nil
}

// The read only registers below have no reserved bits worth rejecting;
// undocumented bits are ignored.

// EffectiveOSR is the OSR_EFF register, the oversampling actually in use.
type EffectiveOSR struct {
	Temperature Oversampling
	Pressure    Oversampling
	ODRValid    bool // the configured rate fits the oversampling
}

func (e *EffectiveOSR) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegOSREff, 1, len(data))
	}
	b := data[0]
	*e = EffectiveOSR{
		Temperature: Oversampling(b & 0x07),
		Pressure:    Oversampling((b >> 3) & 0x07),
		ODRValid:    b&0x80 != 0,
	}
	return nil
}

// Status is the STATUS register.
type Status struct {
	CoreReady          bool
	NVMReady           bool
	NVMError           bool
	NVMCommandError    bool
	BootErrorCorrected bool
}

func (s *Status) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegStatus, 1, len(data))
	}
	b := data[0]
	*s = Status{
		CoreReady:          b&0x01 != 0,
		NVMReady:           b&0x02 != 0,
		NVMError:           b&0x04 != 0,
		NVMCommandError:    b&0x08 != 0,
		BootErrorCorrected: b&0x10 != 0,
	}
	return nil
}

// InterruptStatus is the INT_STATUS register. Reading it clears it on the
// device.
type InterruptStatus struct {
	DataReady     bool
	FIFOFull      bool
	FIFOThreshold bool
	OutOfRange    bool
	PowerOnReset  bool
}

func (s *InterruptStatus) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegIntStatus, 1, len(data))
	}
	b := data[0]
	*s = InterruptStatus{
		DataReady:     b&0x01 != 0,
		FIFOFull:      b&0x02 != 0,
		FIFOThreshold: b&0x04 != 0,
		OutOfRange:    b&0x08 != 0,
		PowerOnReset:  b&0x10 != 0,
	}
	return nil
}

// ChipStatus is the CHIP_STATUS register.
type ChipStatus struct {
	Interface HostInterface
	I3CError0 bool
	I3CError3 bool
}

func (s *ChipStatus) Unmarshal(data []byte) error {
	if len(data) < 1 {
		return short(RegChipStatus, 1, len(data))
	}
	b := data[0]
	*s = ChipStatus{
		Interface: HostInterface(b & 0x03),
		I3CError0: b&0x04 != 0,
		I3CError3: b&0x08 != 0,
	}
	return nil
}

// RawSample is one 24 bit pressure or temperature value as read from the
// data registers or the FIFO.
type RawSample struct {
	XLSB, LSB, MSB byte
}

func (s *RawSample) Unmarshal(data []byte) error {
	if len(data) < 3 {
		return short(RegTempDataXLSB, 3, len(data))
	}
	*s = RawSample{XLSB: data[0], LSB: data[1], MSB: data[2]}
	return nil
}

// Raw returns XLSB | LSB<<8 | MSB<<16.
func (s RawSample) Raw() uint32 {
	return i2c.Unsigned([]byte{s.XLSB, s.LSB, s.MSB})
}

func (s RawSample) empty() bool {
	return s.XLSB == fifoEmpty && s.LSB == fifoEmpty && s.MSB == fifoEmpty
}
