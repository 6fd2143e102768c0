package main

import (
	"sort"
	"sync"
	"time"

	"github.com/calmh/baro/bmp581"
	"periph.io/x/conn/v3/physic"
)

// AvgBMP581 keeps a window of recent pressure readings.
type AvgBMP581 struct {
	mut      sync.Mutex
	pressure []float64
}

func NewAvgBMP581(total, intv time.Duration) *AvgBMP581 {
	size := int(total / intv)
	if size < 1 {
		size = 1
	}
	return &AvgBMP581{
		pressure: make([]float64, 0, size),
	}
}

func (a *AvgBMP581) add(e physic.Env) {
	a.mut.Lock()
	defer a.mut.Unlock()
	p := bmp581.Pascal(e.Pressure)
	if len(a.pressure) < cap(a.pressure) {
		a.pressure = append(a.pressure, p)
	} else {
		copy(a.pressure, a.pressure[1:])
		a.pressure[len(a.pressure)-1] = p
	}
}

// Pressure returns the median pressure over the window, in pascal.
func (a *AvgBMP581) Pressure() float64 {
	a.mut.Lock()
	defer a.mut.Unlock()
	if len(a.pressure) == 0 {
		return 0
	}
	sorted := append([]float64(nil), a.pressure...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// Deviation returns the spread between the highest and lowest pressure in
// the window.
func (a *AvgBMP581) Deviation() float64 {
	a.mut.Lock()
	defer a.mut.Unlock()
	if len(a.pressure) == 0 {
		return 0
	}
	min, max := a.pressure[0], a.pressure[0]
	for _, p := range a.pressure[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return max - min
}
