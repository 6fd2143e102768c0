package main

import (
	"fmt"
	"math"

	"github.com/calmh/baro/bmp581"
)

type errUnknownBus string

func (e errUnknownBus) Error() string {
	return fmt.Sprintf("unknown bus type %q", string(e))
}

// parseODR returns the supported output data rate closest to hz.
func parseODR(hz float64) (bmp581.OutputDataRate, error) {
	if hz <= 0 || hz > bmp581.Odr240.Hz()*1.05 {
		return 0, fmt.Errorf("rate %v Hz out of range", hz)
	}
	best := bmp581.Odr240
	for r := bmp581.Odr240; r <= bmp581.Odr0p125; r++ {
		if math.Abs(r.Hz()-hz) < math.Abs(best.Hz()-hz) {
			best = r
		}
	}
	return best, nil
}

func parseOversampling(pressure, temperature int) (bmp581.OSRConfig, error) {
	p, err := oversampling(pressure)
	if err != nil {
		return bmp581.OSRConfig{}, err
	}
	t, err := oversampling(temperature)
	if err != nil {
		return bmp581.OSRConfig{}, err
	}
	return bmp581.OSRConfig{Pressure: p, Temperature: t, PressureEnabled: true}, nil
}

func oversampling(ratio int) (bmp581.Oversampling, error) {
	for o := bmp581.Sampling1X; o <= bmp581.Sampling128X; o++ {
		if o.Ratio() == ratio {
			return o, nil
		}
	}
	return 0, fmt.Errorf("oversampling %d is not a power of two up to 128", ratio)
}

// parseIIR keeps on-chip compensation on and routes the filtered values to
// the data registers.
func parseIIR(pressure, temperature int) (bmp581.DSPConfig, error) {
	p, err := coefficient(pressure)
	if err != nil {
		return bmp581.DSPConfig{}, err
	}
	t, err := coefficient(temperature)
	if err != nil {
		return bmp581.DSPConfig{}, err
	}
	return bmp581.DSPConfig{
		PressureIIR:          p,
		TemperatureIIR:       t,
		Compensation:         bmp581.CompensateBoth,
		ShadowIIRPressure:    p != bmp581.Coeff0,
		ShadowIIRTemperature: t != bmp581.Coeff0,
	}, nil
}

func coefficient(v int) (bmp581.IIRCoefficient, error) {
	for c := bmp581.Coeff0; c <= bmp581.Coeff127; c++ {
		if 1<<c-1 == v {
			return c, nil
		}
	}
	return 0, fmt.Errorf("filter coefficient %d is not one of 0, 1, 3, 7 ... 127", v)
}
