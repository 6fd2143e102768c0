// Package sensor describes bus attached sensors independently of their
// driver.
package sensor

import "fmt"

type Quantity int

const (
	Temperature Quantity = iota
	Humidity
	Pressure
	Light
	UVIntensity
)

func (q Quantity) String() string {
	switch q {
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	case Pressure:
		return "pressure"
	case Light:
		return "light"
	case UVIntensity:
		return "uv_intensity"
	default:
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
}

type Unit int

const (
	DegreeCelsius Unit = iota
	Percent
	Pascal
	Lux
	Index
)

func (u Unit) String() string {
	switch u {
	case DegreeCelsius:
		return "°C"
	case Percent:
		return "%"
	case Pascal:
		return "Pa"
	case Lux:
		return "lx"
	case Index:
		return "index"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Descriptor is what a sensor is, regardless of how it is attached.
type Descriptor struct {
	Name     string
	Quantity Quantity
	Unit     Unit
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Quantity, d.Unit)
}

// A Sensor is a described device reachable on some bus.
type Sensor interface {
	Describe() Descriptor
	// BusAddress is the device's address on its bus, or its chip select
	// line for SPI.
	BusAddress() uint16
	// RegisterWidth is the size of one register in bytes.
	RegisterWidth() int
}

// I2C is a sensor on an I2C bus.
type I2C struct {
	Descriptor Descriptor
	Address    uint16
	RegWidth   int
}

func (s I2C) Describe() Descriptor { return s.Descriptor }
func (s I2C) BusAddress() uint16   { return s.Address }
func (s I2C) RegisterWidth() int   { return s.RegWidth }

func (s I2C) String() string {
	return fmt.Sprintf("%v at i2c 0x%02x", s.Descriptor, s.Address)
}

// SPI is a sensor on an SPI bus.
type SPI struct {
	Descriptor  Descriptor
	ChipSelect  uint16
	FrequencyHz uint32
	Command     uint8
	RegWidth    int
}

func (s SPI) Describe() Descriptor { return s.Descriptor }
func (s SPI) BusAddress() uint16   { return s.ChipSelect }
func (s SPI) RegisterWidth() int   { return s.RegWidth }

func (s SPI) String() string {
	return fmt.Sprintf("%v at spi cs%d %d Hz", s.Descriptor, s.ChipSelect, s.FrequencyHz)
}
