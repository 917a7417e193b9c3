//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"sync"

	"doorcode-go/drivers/mfrc522"
	"doorcode-go/hal"
	"doorcode-go/x/mathx"
)

// Sim bundles the simulated board parts so tests and the REPL can
// reach past the hal.Board interfaces.
type Sim struct {
	Port   *ChanPort
	Reader *SimReader
	Servo  *SimServo
	Lamps  *SimLamps
}

func NewSim() *Sim {
	return &Sim{
		Port:   NewChanPort(),
		Reader: &SimReader{},
		Servo:  &SimServo{angle: -1},
		Lamps:  &SimLamps{},
	}
}

func (s *Sim) Board() hal.Board {
	return hal.Board{Port: s.Port, Reader: s.Reader, Servo: s.Servo, Lamps: s.Lamps}
}

// ----------------------------- Serial (sim) -----------------------------------

// ChanPort is an in-memory serial port. Inject feeds the receive side;
// every Write is copied onto the Tx channel (dropped if nobody reads).
type ChanPort struct {
	mu  sync.Mutex
	rx  []byte
	rdy chan struct{}
	tx  chan []byte
}

func NewChanPort() *ChanPort {
	return &ChanPort{
		rdy: make(chan struct{}, 1),
		tx:  make(chan []byte, 64),
	}
}

func (p *ChanPort) Inject(s string) {
	p.mu.Lock()
	p.rx = append(p.rx, s...)
	p.mu.Unlock()
	select {
	case p.rdy <- struct{}{}:
	default:
	}
}

func (p *ChanPort) Write(b []byte) (int, error) {
	cp := append([]byte(nil), b...)
	select {
	case p.tx <- cp:
	default:
	}
	return len(b), nil
}

// Tx exposes written frames for inspection.
func (p *ChanPort) Tx() <-chan []byte { return p.tx }

func (p *ChanPort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	for {
		p.mu.Lock()
		if len(p.rx) > 0 {
			n := copy(buf, p.rx)
			p.rx = p.rx[n:]
			if len(p.rx) == 0 {
				p.rx = nil
			}
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-p.rdy:
		}
	}
}

// ----------------------------- Reader (sim) -----------------------------------

// SimReader queues scans. A queued UID stays present, like a card
// sitting on the pad, until EndSession removes it.
type SimReader struct {
	mu    sync.Mutex
	cards [][]byte
	fail  error
	buf   [10]byte
}

// InjectUID queues a card. The slice is copied.
func (r *SimReader) InjectUID(uid []byte) {
	r.mu.Lock()
	r.cards = append(r.cards, append([]byte(nil), uid...))
	r.mu.Unlock()
}

// FailNext makes the next ReadUID return err.
func (r *SimReader) FailNext(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *SimReader) CardPresent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards) > 0 || r.fail != nil
}

// ReadUID returns the front card. The result aliases an internal
// buffer, matching how the hardware driver behaves.
func (r *SimReader) ReadUID() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		err := r.fail
		r.fail = nil
		return nil, err
	}
	if len(r.cards) == 0 {
		return nil, mfrc522.ErrNoCard
	}
	n := copy(r.buf[:], r.cards[0])
	return r.buf[:n], nil
}

func (r *SimReader) EndSession() error {
	r.mu.Lock()
	if len(r.cards) > 0 {
		r.cards = r.cards[1:]
	}
	r.mu.Unlock()
	return nil
}

// ----------------------------- Servo (sim) ------------------------------------

// SimServo records the last commanded angle and its pulse width.
// Angle() is -1 until the first write.
type SimServo struct {
	mu     sync.Mutex
	angle  int
	micros int
	moves  int
}

func (s *SimServo) SetAngle(deg int) {
	deg = mathx.Clamp(deg, 0, 180)
	s.mu.Lock()
	s.angle = deg
	s.micros = mathx.Scale(deg, 0, 180, servoMinUS, servoMaxUS)
	s.moves++
	s.mu.Unlock()
}

func (s *SimServo) Angle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

func (s *SimServo) Micros() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.micros
}

// Moves counts SetAngle calls.
func (s *SimServo) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}

// ----------------------------- Lamps (sim) ------------------------------------

type SimLamps struct {
	mu      sync.Mutex
	granted bool
	denied  bool
}

func (l *SimLamps) Set(granted, denied bool) {
	l.mu.Lock()
	l.granted, l.denied = granted, denied
	l.mu.Unlock()
}

func (l *SimLamps) State() (granted, denied bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.granted, l.denied
}
