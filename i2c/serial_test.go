package i2c

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type slowBus struct {
	delay       time.Duration
	active, max int32
	release     chan struct{}
}

func (b *slowBus) transfer() {
	n := atomic.AddInt32(&b.active, 1)
	for {
		m := atomic.LoadInt32(&b.max)
		if n <= m || atomic.CompareAndSwapInt32(&b.max, m, n) {
			break
		}
	}
	if b.release != nil {
		<-b.release
	}
	time.Sleep(b.delay)
	atomic.AddInt32(&b.active, -1)
}

func (b *slowBus) Read(_ context.Context, _ uint16, _ uint8, buf []byte) error {
	b.transfer()
	for i := range buf {
		buf[i] = 0xaa
	}
	return nil
}

func (b *slowBus) Write(context.Context, uint16, uint8, []byte) error {
	b.transfer()
	return nil
}

func TestSerialOneOutstanding(t *testing.T) {
	bus := &slowBus{delay: time.Millisecond}
	s := NewSerial(bus, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 2)
			if err := s.Read(context.Background(), 0x46, 0x01, buf); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if bus.max != 1 {
		t.Errorf("%d concurrent transfers, expected 1", bus.max)
	}
}

func TestSerialTimeout(t *testing.T) {
	bus := &slowBus{release: make(chan struct{})}
	s := NewSerial(bus, 10*time.Millisecond)

	buf := []byte{0}
	err := s.Read(context.Background(), 0x46, 0x01, buf)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, expected timeout", err)
	}
	if buf[0] != 0 {
		t.Error("buffer written after timeout")
	}

	// The stalled transfer still holds the bus.
	if err := s.Write(context.Background(), 0x46, 0x01, []byte{1}); !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, expected timeout while bus busy", err)
	}

	close(bus.release)
	time.Sleep(5 * time.Millisecond)
	if err := s.Write(context.Background(), 0x46, 0x01, []byte{1}); err != nil {
		t.Fatal(err)
	}
}

func TestSerialCanceled(t *testing.T) {
	bus := &slowBus{release: make(chan struct{})}
	defer close(bus.release)
	s := NewSerial(bus, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if err := s.Write(ctx, 0x46, 0x01, []byte{1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, expected canceled", err)
	}
}
