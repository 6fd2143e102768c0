package bmp581

import (
	"periph.io/x/conn/v3/physic"
)

// A Converter turns raw data register values into physical units.
type Converter interface {
	Pressure(raw uint32) (physic.Pressure, error)
	Temperature(raw uint32) (physic.Temperature, error)
}

// DatasheetConverter applies the output format of the data registers: the
// device compensates on chip, temperature is a signed value in 1/65536 °C and
// pressure an unsigned value in 1/64 Pa.
type DatasheetConverter struct{}

func (DatasheetConverter) Pressure(raw uint32) (physic.Pressure, error) {
	return physic.Pressure(int64(raw&0xffffff) * int64(physic.Pascal) / 64), nil
}

func (DatasheetConverter) Temperature(raw uint32) (physic.Temperature, error) {
	// Sign extend from 24 bits.
	t := int32(raw<<8) >> 8
	return physic.ZeroCelsius + physic.Temperature(int64(t)*int64(physic.Celsius)/65536), nil
}

// Celsius returns t in degrees Celsius.
func Celsius(t physic.Temperature) float64 {
	return float64(t-physic.ZeroCelsius) / float64(physic.Celsius)
}

// Pascal returns p in pascal.
func Pascal(p physic.Pressure) float64 {
	return float64(p) / float64(physic.Pascal)
}
