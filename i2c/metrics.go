package i2c

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumented counts and times the transfers on the wrapped bus.
type Instrumented struct {
	bus       Bus
	transfers *prometheus.CounterVec
	seconds   *prometheus.HistogramVec
}

func NewInstrumented(bus Bus, reg prometheus.Registerer) *Instrumented {
	f := promauto.With(reg)
	return &Instrumented{
		bus: bus,
		transfers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sensors",
			Subsystem: "i2c",
			Name:      "transfers_total",
		}, []string{"op", "result"}),
		seconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sensors",
			Subsystem: "i2c",
			Name:      "transfer_seconds",
			Buckets:   prometheus.ExponentialBuckets(100e-6, 2, 10),
		}, []string{"op"}),
	}
}

func (b *Instrumented) Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error {
	t0 := time.Now()
	err := b.bus.Read(ctx, addr, reg, buf)
	b.observe("read", t0, err)
	return err
}

func (b *Instrumented) Write(ctx context.Context, addr uint16, reg uint8, data []byte) error {
	t0 := time.Now()
	err := b.bus.Write(ctx, addr, reg, data)
	b.observe("write", t0, err)
	return err
}

func (b *Instrumented) observe(op string, t0 time.Time, err error) {
	b.seconds.WithLabelValues(op).Observe(time.Since(t0).Seconds())
	switch {
	case err == nil:
		b.transfers.WithLabelValues(op, "ok").Inc()
	case errors.Is(err, ErrTimeout):
		b.transfers.WithLabelValues(op, "timeout").Inc()
	default:
		b.transfers.WithLabelValues(op, "error").Inc()
	}
}
