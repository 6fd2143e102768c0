package bmp581

import (
	"testing"
)

func TestDatasheetConverter(t *testing.T) {
	var c DatasheetConverter

	temps := []struct {
		raw uint32
		c   float64
	}{
		{0x000000, 0},
		{0x100000, 16},
		{0x190000, 25},
		{0x198000, 25.5},
		{0xf60000, -10},
		{0xffffff, -1.0 / 65536},
		{0x7fffff, 127.99998474121094},
	}
	for _, tc := range temps {
		tp, err := c.Temperature(tc.raw)
		if err != nil {
			t.Fatal(err)
		}
		// Resolution of physic.Temperature is one nanokelvin.
		if d := Celsius(tp) - tc.c; d > 1e-9 || d < -1e-9 {
			t.Errorf("0x%06x: %v °C != expected %v", tc.raw, Celsius(tp), tc.c)
		}
	}

	pressures := []struct {
		raw uint32
		pa  float64
	}{
		{0, 0},
		{64, 1},
		{0x62f340, 101325},
		{0x5e2e80, 96442},
		{0xffffff, 262143.984375},
	}
	for _, tc := range pressures {
		p, err := c.Pressure(tc.raw)
		if err != nil {
			t.Fatal(err)
		}
		if Pascal(p) != tc.pa {
			t.Errorf("0x%06x: %v Pa != expected %v", tc.raw, Pascal(p), tc.pa)
		}
	}
}
