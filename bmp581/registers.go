// Package bmp581 provides a driver for Bosch's BMP581 barometric pressure and
// temperature sensor.
//
// The datasheet can be found here:
// https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bmp581-ds004.pdf
package bmp581

import "fmt"

const (
	AddressPrimary   uint16 = 0x46 // SDO to GND
	AddressSecondary uint16 = 0x47 // SDO to VDDIO
)

const (
	RegChipID        uint8 = 0x01
	RegRevID         uint8 = 0x02
	RegChipStatus    uint8 = 0x11
	RegDriveConfig   uint8 = 0x13
	RegIntConfig     uint8 = 0x14
	RegIntSource     uint8 = 0x15
	RegFIFOConfig    uint8 = 0x16
	RegFIFOCount     uint8 = 0x17
	RegFIFOSel       uint8 = 0x18
	RegTempDataXLSB  uint8 = 0x1D
	RegTempDataLSB   uint8 = 0x1E
	RegTempDataMSB   uint8 = 0x1F
	RegPressDataXLSB uint8 = 0x20
	RegPressDataLSB  uint8 = 0x21
	RegPressDataMSB  uint8 = 0x22
	RegIntStatus     uint8 = 0x27
	RegStatus        uint8 = 0x28
	RegFIFOData      uint8 = 0x29 // does not auto-increment
	RegNVMAddr       uint8 = 0x2B
	RegNVMDataLSB    uint8 = 0x2C
	RegNVMDataMSB    uint8 = 0x2D
	RegDSPConfig     uint8 = 0x30
	RegDSPIIR        uint8 = 0x31
	RegOORThrPLSB    uint8 = 0x32
	RegOORThrPMSB    uint8 = 0x33
	RegOORRange      uint8 = 0x34
	RegOORConfig     uint8 = 0x35
	RegOSRConfig     uint8 = 0x36
	RegODRConfig     uint8 = 0x37
	RegOSREff        uint8 = 0x38
	RegCmd           uint8 = 0x7E
)

const (
	ChipID              byte = 0x50
	ChipRevision        byte = 0x32
	IntStatusReady      byte = 0x10 // only the power-on reset flag set
	StatusReadyMask     byte = 0x06
	RegisterWidth            = 1
	fifoEmpty           byte = 0x7F
	nvmFirstUserRow          = 0x20
	nvmLastUserRow           = 0x22
	maxFIFOThreshold         = 0x1F
	maxPadDriveStrength      = 0x0F
)

type Command byte

const (
	CmdNVMFirst  Command = 0x5D // unlocks the NVM read/write commands
	CmdNVMWrite  Command = 0xA0
	CmdNVMRead   Command = 0xA5
	CmdSoftReset Command = 0xB6
)

func (c Command) valid() bool {
	switch c {
	case CmdNVMFirst, CmdNVMWrite, CmdNVMRead, CmdSoftReset:
		return true
	}
	return false
}

type PowerMode byte

// A change between two of Normal, Forced and Continuous has to pass through
// Standby. Forced drops back to Standby by itself after one measurement.
const (
	Standby PowerMode = iota
	Normal
	Forced
	Continuous // non-stop sampling, ignores the output data rate
)

func (m PowerMode) String() string {
	switch m {
	case Standby:
		return "standby"
	case Normal:
		return "normal"
	case Forced:
		return "forced"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("PowerMode(%d)", byte(m))
	}
}

// Output data rates in Hz, fastest first. The value is the rate selector code.
type OutputDataRate byte

const (
	Odr240 OutputDataRate = iota
	Odr218p5
	Odr199p1
	Odr179p2
	Odr160
	Odr149p3
	Odr140
	Odr129p8
	Odr120
	Odr110p1
	Odr100p2
	Odr89p6
	Odr80
	Odr70
	Odr60
	Odr50p1
	Odr45
	Odr40
	Odr35
	Odr30
	Odr25
	Odr20
	Odr15
	Odr10
	Odr5
	Odr4
	Odr3
	Odr2
	Odr1
	Odr0p5
	Odr0p25
	Odr0p125
)

var odrHz = [...]float64{
	240.000, 218.537, 199.111, 179.200, 160.000, 149.333, 140.000, 129.855,
	120.000, 110.164, 100.299, 89.600, 80.000, 70.000, 60.000, 50.056,
	45.025, 40.000, 35.000, 30.000, 25.005, 20.000, 15.000, 10.000,
	5.000, 4.000, 3.000, 2.000, 1.000, 0.500, 0.250, 0.125,
}

// Hz returns the nominal rate.
func (r OutputDataRate) Hz() float64 {
	if int(r) >= len(odrHz) {
		return 0
	}
	return odrHz[r]
}

func (r OutputDataRate) String() string {
	if int(r) >= len(odrHz) {
		return fmt.Sprintf("OutputDataRate(%d)", byte(r))
	}
	return fmt.Sprintf("%.3f Hz", odrHz[r])
}

// Oversampling is the number of samples averaged per reported sample.
type Oversampling byte

const (
	Sampling1X Oversampling = iota
	Sampling2X
	Sampling4X
	Sampling8X
	Sampling16X
	Sampling32X
	Sampling64X
	Sampling128X
)

// Ratio returns the oversampling factor.
func (o Oversampling) Ratio() int {
	return 1 << o
}

func (o Oversampling) String() string {
	return fmt.Sprintf("%dx", o.Ratio())
}

// IIR filter coefficients, higher values means steadier measurements but
// slower reaction times.
type IIRCoefficient byte

const (
	Coeff0 IIRCoefficient = iota // bypass
	Coeff1
	Coeff3
	Coeff7
	Coeff15
	Coeff31
	Coeff63
	Coeff127
)

// Compensation selects which channels the on-chip compensation runs for.
type Compensation byte

const (
	CompensateNone Compensation = iota
	CompensateTemperature
	CompensatePressure
	CompensateBoth
)

// CountLimit is how many consecutive out of range samples raise the
// interrupt.
type CountLimit byte

const (
	Count1 CountLimit = iota
	Count3
	Count7
	Count15
)

// FrameSelection selects what each FIFO frame holds.
type FrameSelection byte

const (
	FramesDisabled FrameSelection = iota
	FramesTemperature
	FramesPressure
	FramesBoth
)

// Size returns the size in bytes of one FIFO frame.
func (f FrameSelection) Size() int {
	switch f {
	case FramesTemperature, FramesPressure:
		return 3
	case FramesBoth:
		return 6
	default:
		return 0
	}
}

// Decimation keeps one out of 2^n samples in the FIFO.
type Decimation byte

const (
	Decimation1 Decimation = iota
	Decimation2
	Decimation4
	Decimation8
	Decimation16
	Decimation32
	Decimation64
	Decimation128
)

type HostInterface byte

const (
	InterfaceI2COnly HostInterface = iota
	InterfaceSPIMode1Or2
	InterfaceSPIMode0Or3
	InterfaceAuto // I2C and I3C, or SPI, detected at the first transaction
)
