// Package door runs the access-control loop: it polls the card reader,
// feeds serial command lines to the controller, and owns the serial
// transmit side. Anything that wants bytes on the wire publishes a
// types.TxFrame to serial/tx; this service is the only writer.
package door

import (
	"context"
	"encoding/json"
	"time"

	"doorcode-go/access"
	"doorcode-go/bus"
	"doorcode-go/errcode"
	"doorcode-go/hal"
	"doorcode-go/lineio"
	"doorcode-go/types"
	"doorcode-go/x/mathx"
	"doorcode-go/x/timex"
)

var (
	topicConfigDoor = bus.T("config", "door")
	topicSerialTx   = bus.T("serial", "tx")
	topicState      = bus.T("door", "state")
	topicScan       = bus.T("door", "event", "scan")
	topicFault      = bus.T("door", "event", "fault")
)

// -----------------------------------------------------------------------------
// Entry point
// -----------------------------------------------------------------------------

// Run blocks until ctx is cancelled. Scans and serial commands are
// ignored until the retained config/door message arrives.
func Run(ctx context.Context, conn *bus.Connection, hw hal.Board) {
	s := &service{
		conn:  conn,
		hw:    hw,
		lines: lineio.New(8),
		wire:  make([]byte, 0, 96),
	}
	s.loop(ctx)
}

type service struct {
	conn *bus.Connection
	hw   hal.Board

	ctrl  *access.Controller
	ready bool

	lines *lineio.Worker
	poll  *time.Ticker

	// Present feedback (lamps, card session) for holdDur after a scan;
	// no new scan is evaluated while holding.
	holding bool
	hold    *time.Timer
	holdDur time.Duration

	last types.DoorState // last published snapshot, TS zeroed
	wire []byte          // tx scratch
}

// -----------------------------------------------------------------------------
// Main loop
// -----------------------------------------------------------------------------

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigDoor)
	txSub := s.conn.Subscribe(topicSerialTx)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(txSub)

	stopLines := s.lines.Start(ctx, lineio.Config{
		Port:      s.hw.Port,
		MaxLine:   128,
		IdleFlush: time.Second,
	})
	defer stopLines()

	// The ticker runs from boot; pollTick does nothing until configured.
	s.poll = time.NewTicker(50 * time.Millisecond)
	defer s.poll.Stop()

	s.hold = time.NewTimer(time.Hour)
	if !s.hold.Stop() {
		timex.DrainTimer(s.hold)
	}

	println("[door] awaiting config")

	for {
		select {
		case <-ctx.Done():
			println("[door] stopping")
			return

		case msg := <-cfgSub.Channel():
			s.applyConfig(msg.Payload)

		case msg := <-txSub.Channel():
			s.writeFrame(msg.Payload)

		case line := <-s.lines.Lines():
			s.handleLine(line.Data)

		case <-s.poll.C:
			s.pollTick()

		case <-s.hold.C:
			s.holdDone()
		}
	}
}

// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

func (s *service) applyConfig(payload any) {
	var cfg types.DoorConfig
	if err := decodeJSON(payload, &cfg); err != nil {
		println("[door] config decode failed:", err.Error())
		s.publishFault("config", errcode.InvalidPayload)
		return
	}

	s.holdDur = time.Duration(mathx.Clamp(cfg.HoldMs, 0, 60_000)) * time.Millisecond
	pollMs := mathx.Clamp(cfg.PollMs, 10, 1000)
	s.poll.Reset(time.Duration(pollMs) * time.Millisecond)

	if s.holding {
		if !s.hold.Stop() {
			timex.DrainTimer(s.hold)
		}
		s.holdDone()
	}

	s.ctrl = access.NewController(access.Config{
		IdlePos:    cfg.DefaultPos,
		GrantedPos: cfg.AllowedPos,
		Allow:      access.NewAllowList(cfg.Allow...),
	}, s.hw.Servo)
	s.ctrl.Reset()
	s.ready = true

	println("[door] configured: idle", cfg.DefaultPos, "granted", cfg.AllowedPos, "cards", s.ctrl.Cards())
	s.publishState()
}

// -----------------------------------------------------------------------------
// Serial rx
// -----------------------------------------------------------------------------

func (s *service) handleLine(data []byte) {
	if !s.ready {
		return
	}
	resp, ok := s.ctrl.HandleLine(data)
	if !ok {
		return
	}
	s.writeWire(resp)
	s.publishStateIfChanged()
}

// -----------------------------------------------------------------------------
// Reader poll
// -----------------------------------------------------------------------------

func (s *service) pollTick() {
	if !s.ready {
		return
	}
	if !s.holding && s.hw.Reader.CardPresent() {
		uid, err := s.hw.Reader.ReadUID()
		if err != nil {
			println("[door] uid read failed:", err.Error())
			s.publishFault("read_uid", errcode.MapDriverErr(err))
			s.endSession()
		} else {
			s.scanned(uid)
		}
	}
	s.ctrl.Assert()
}

func (s *service) scanned(uid []byte) {
	resp, fb := s.ctrl.Evaluate(uid)
	s.writeWire(resp)
	s.hw.Lamps.Set(fb.Granted, fb.Denied)
	s.holding = true
	timex.ResetTimer(s.hold, s.holdDur)

	s.conn.Publish(s.conn.NewMessage(topicScan, types.ScanEvent{
		UID:     resp.UID,
		Granted: fb.Granted,
		TS:      timex.NowMs(),
	}, false))
	s.publishStateIfChanged()
}

func (s *service) holdDone() {
	s.hw.Lamps.Set(false, false)
	s.endSession()
	s.holding = false
}

func (s *service) endSession() {
	if err := s.hw.Reader.EndSession(); err != nil {
		println("[door] end session failed:", err.Error())
	}
}

// -----------------------------------------------------------------------------
// Serial tx
// -----------------------------------------------------------------------------

func (s *service) writeWire(resp access.Response) {
	s.wire = resp.AppendWire(s.wire[:0])
	if len(s.wire) == 0 {
		return
	}
	s.wire = append(s.wire, '\n')
	if _, err := s.hw.Port.Write(s.wire); err != nil {
		println("[door] serial write failed:", err.Error())
	}
}

func (s *service) writeFrame(payload any) {
	f, ok := payload.(types.TxFrame)
	if !ok {
		return
	}
	s.wire = append(s.wire[:0], f.Line...)
	s.wire = append(s.wire, '\n')
	if _, err := s.hw.Port.Write(s.wire); err != nil {
		println("[door] serial write failed:", err.Error())
	}
}

// -----------------------------------------------------------------------------
// Bus out
// -----------------------------------------------------------------------------

func (s *service) snapshot() types.DoorState {
	return types.DoorState{
		Enabled:    s.ctrl.Enabled(),
		Position:   s.ctrl.Position(),
		DefaultPos: s.ctrl.IdlePos(),
		AllowedPos: s.ctrl.GrantedPos(),
		Cards:      s.ctrl.Cards(),
	}
}

func (s *service) publishState() {
	st := s.snapshot()
	s.last = st
	st.TS = timex.NowMs()
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

func (s *service) publishStateIfChanged() {
	if s.snapshot() == s.last {
		return
	}
	s.publishState()
}

func (s *service) publishFault(op string, code errcode.Code) {
	s.conn.Publish(s.conn.NewMessage(topicFault, types.Fault{
		Op:   op,
		Code: string(code),
		TS:   timex.NowMs(),
	}, false))
}

func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		// Accept maps, structs, numbers… by marshaling then decoding to T.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
