package lineio

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// --- minimal fake port implementing hal.Port ---

type fakePort struct {
	mu sync.Mutex
	rx []byte
	rd chan struct{}
}

func newFakePort() *fakePort { return &fakePort{rd: make(chan struct{}, 1)} }

func (f *fakePort) inject(s string) {
	f.mu.Lock()
	f.rx = append(f.rx, s...)
	f.mu.Unlock()
	select {
	case f.rd <- struct{}{}:
	default:
	}
}

func (f *fakePort) Write(p []byte) (int, error) { return len(p), nil }

func (f *fakePort) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		f.mu.Lock()
		if len(f.rx) > 0 {
			n := copy(p, f.rx)
			f.rx = f.rx[n:]
			f.mu.Unlock()
			return n, nil
		}
		f.mu.Unlock()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-f.rd:
		}
	}
}

// --- helpers ---

func recvLine(t *testing.T, w *Worker, d time.Duration) Line {
	t.Helper()
	select {
	case ln := <-w.Lines():
		return ln
	case <-time.After(d):
		t.Fatal("timeout waiting for line")
		return Line{}
	}
}

func expectNoLine(t *testing.T, w *Worker, d time.Duration) {
	t.Helper()
	select {
	case ln := <-w.Lines():
		t.Fatalf("unexpected line: %q", ln.Data)
	case <-time.After(d):
	}
}

// --- tests ---

func TestSplitsOnLF(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 64})
	defer stop()

	p.inject("A\nSTATUS\n")

	if ln := recvLine(t, w, time.Second); string(ln.Data) != "A" {
		t.Fatalf("got %q", ln.Data)
	}
	ln := recvLine(t, w, time.Second)
	if string(ln.Data) != "STATUS" {
		t.Fatalf("got %q", ln.Data)
	}
	if ln.TS.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestDropsCR(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 64})
	defer stop()

	p.inject("SETPOS:45\r\n")
	if ln := recvLine(t, w, time.Second); string(ln.Data) != "SETPOS:45" {
		t.Fatalf("got %q", ln.Data)
	}
}

func TestReassemblesSplitWrites(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 64})
	defer stop()

	p.inject("STA")
	time.Sleep(20 * time.Millisecond)
	p.inject("TUS\n")

	if ln := recvLine(t, w, time.Second); string(ln.Data) != "STATUS" {
		t.Fatalf("got %q", ln.Data)
	}
}

func TestEmptyLinesSkipped(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 64})
	defer stop()

	p.inject("\n\n\nD\n")
	if ln := recvLine(t, w, time.Second); string(ln.Data) != "D" {
		t.Fatalf("got %q", ln.Data)
	}
	expectNoLine(t, w, 50*time.Millisecond)
}

func TestIdleFlush(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{
		Port:      p,
		MaxLine:   64,
		IdleFlush: 40 * time.Millisecond,
	})
	defer stop()

	p.inject("STATUS") // no terminator
	ln := recvLine(t, w, time.Second)
	if string(ln.Data) != "STATUS" {
		t.Fatalf("got %q", ln.Data)
	}
}

func TestNoIdleFlushWhenDisabled(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 64})
	defer stop()

	p.inject("STATUS")
	expectNoLine(t, w, 120*time.Millisecond)

	p.inject("\n")
	if ln := recvLine(t, w, time.Second); string(ln.Data) != "STATUS" {
		t.Fatalf("got %q", ln.Data)
	}
}

func TestOversizeLineTruncated(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 16})
	defer stop()

	p.inject(strings.Repeat("x", 50) + "\n")
	ln := recvLine(t, w, time.Second)
	if len(ln.Data) != 16 {
		t.Fatalf("len = %d, want 16", len(ln.Data))
	}
}

func TestStopEndsReader(t *testing.T) {
	p := newFakePort()
	w := New(8)
	stop := w.Start(context.Background(), Config{Port: p, MaxLine: 64})

	stop()
	time.Sleep(30 * time.Millisecond)
	p.inject("A\n")
	expectNoLine(t, w, 300*time.Millisecond)
}
