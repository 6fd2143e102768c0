package i2c

import (
	"context"
	"errors"
	"time"
)

// Serial allows at most one outstanding transfer on the wrapped bus and
// bounds how long a caller waits for it. A transfer that outlives the wait
// keeps the bus busy until it finishes, so later callers wait (and may time
// out) rather than overlap it.
type Serial struct {
	bus     Bus
	timeout time.Duration
	slot    chan struct{}
}

// NewSerial wraps bus. A zero timeout waits as long as the context allows.
func NewSerial(bus Bus, timeout time.Duration) *Serial {
	return &Serial{
		bus:     bus,
		timeout: timeout,
		slot:    make(chan struct{}, 1),
	}
}

func (s *Serial) Read(ctx context.Context, addr uint16, reg uint8, buf []byte) error {
	// The transfer may finish after we gave up on it; never let it write
	// into the caller's buffer at that point.
	tmp := make([]byte, len(buf))
	err := s.do(ctx, func(ctx context.Context) error {
		return s.bus.Read(ctx, addr, reg, tmp)
	})
	if err != nil {
		return err
	}
	copy(buf, tmp)
	return nil
}

func (s *Serial) Write(ctx context.Context, addr uint16, reg uint8, data []byte) error {
	tmp := append([]byte(nil), data...)
	return s.do(ctx, func(ctx context.Context) error {
		return s.bus.Write(ctx, addr, reg, tmp)
	})
}

func (s *Serial) do(ctx context.Context, fn func(context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return waitError(ctx)
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-s.slot }()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		select {
		case err := <-done:
			return err
		default:
		}
		return waitError(ctx)
	}
}

func waitError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ctx.Err()
}
