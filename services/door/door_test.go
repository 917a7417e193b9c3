//go:build !rp2040 && !rp2350

package door

import (
	"context"
	"strings"
	"testing"
	"time"

	"doorcode-go/bus"
	"doorcode-go/drivers/mfrc522"
	"doorcode-go/platform"
	"doorcode-go/types"
)

type fixture struct {
	conn *bus.Connection // test-side connection
	sim  *platform.Sim
}

// startBare launches the service without a config; the node must sit
// idle until one arrives.
func startBare(t *testing.T) *fixture {
	t.Helper()
	b := bus.NewBus(16)
	sim := platform.NewSim()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Run(ctx, b.NewConnection("door"), sim.Board())
	return &fixture{conn: b.NewConnection("test"), sim: sim}
}

func startNode(t *testing.T, cfg types.DoorConfig) *fixture {
	t.Helper()
	f := startBare(t)
	f.configure(t, cfg)
	return f
}

func (f *fixture) configure(t *testing.T, cfg types.DoorConfig) {
	t.Helper()
	f.conn.Publish(f.conn.NewMessage(bus.T("config", "door"), cfg, true))
	f.awaitState(t, func(st types.DoorState) bool { return st.DefaultPos == cfg.DefaultPos })
}

func testCfg() types.DoorConfig {
	return types.DoorConfig{
		DefaultPos: 90,
		AllowedPos: 180,
		Allow:      []string{"A1B2C3D4"},
		HoldMs:     40,
		PollMs:     10,
	}
}

func (f *fixture) expectLine(t *testing.T, want string) {
	t.Helper()
	select {
	case frame := <-f.sim.Port.Tx():
		got := strings.TrimSuffix(string(frame), "\n")
		if got != want {
			t.Fatalf("line = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (f *fixture) expectNoLine(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case frame := <-f.sim.Port.Tx():
		t.Fatalf("unexpected line %q", frame)
	case <-time.After(d):
	}
}

func (f *fixture) awaitState(t *testing.T, cond func(types.DoorState) bool) types.DoorState {
	t.Helper()
	sub := f.conn.Subscribe(bus.T("door", "state"))
	defer f.conn.Unsubscribe(sub)
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.DoorState); ok && cond(st) {
				return st
			}
		case <-deadline:
			t.Fatal("state condition not met")
			return types.DoorState{}
		}
	}
}

func awaitServo(t *testing.T, s *platform.SimServo, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Angle() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("servo angle = %d, want %d", s.Angle(), want)
}

func awaitLamps(t *testing.T, l *platform.SimLamps, wantG, wantD bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g, d := l.State(); g == wantG && d == wantD {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	g, d := l.State()
	t.Fatalf("lamps = %v/%v, want %v/%v", g, d, wantG, wantD)
}

func TestBootParksAtIdle(t *testing.T) {
	f := startNode(t, testCfg())
	st := f.awaitState(t, func(st types.DoorState) bool { return st.Position == 90 })
	if st.Enabled {
		t.Fatal("node booted enabled")
	}
	if st.Cards != 1 {
		t.Fatalf("cards = %d, want 1", st.Cards)
	}
	awaitServo(t, f.sim.Servo, 90)
}

func TestSerialEnableDisable(t *testing.T) {
	f := startNode(t, testCfg())

	f.sim.Port.Inject("A\n")
	f.expectLine(t, `{"status":"servo_control_enabled"}`)
	f.awaitState(t, func(st types.DoorState) bool { return st.Enabled && st.Position == 180 })
	awaitServo(t, f.sim.Servo, 180)

	f.sim.Port.Inject("D\n")
	f.expectLine(t, `{"status":"servo_control_disabled"}`)
	f.awaitState(t, func(st types.DoorState) bool { return !st.Enabled && st.Position == 90 })
	awaitServo(t, f.sim.Servo, 90)
}

func TestStatusCommand(t *testing.T) {
	f := startNode(t, testCfg())
	f.sim.Port.Inject("STATUS\n")
	f.expectLine(t, `{"servo":{"current_pos":90,"default_pos":90,"allowed_pos":180},"servo_control":false}`)
}

func TestSetPosCommands(t *testing.T) {
	f := startNode(t, testCfg())

	// Disabled: the position is recorded but the horn must not move.
	f.sim.Port.Inject("SETPOS:45\n")
	f.expectLine(t, `{"status":"position_set","angle":45}`)
	time.Sleep(50 * time.Millisecond)
	awaitServo(t, f.sim.Servo, 90)

	f.sim.Port.Inject("SETPOS:200\n")
	f.expectLine(t, `{"error":"invalid_position"}`)

	// Enabled: the asserted position follows SETPOS.
	f.sim.Port.Inject("A\n")
	f.expectLine(t, `{"status":"servo_control_enabled"}`)
	f.sim.Port.Inject("SETPOS:45\n")
	f.expectLine(t, `{"status":"position_set","angle":45}`)
	awaitServo(t, f.sim.Servo, 45)
}

func TestSerialConfigUpdate(t *testing.T) {
	f := startNode(t, testCfg())

	f.sim.Port.Inject(`{"default_pos":10,"allowed_pos":170}` + "\n")
	f.expectLine(t, `{"status":"config_updated"}`)

	f.sim.Port.Inject("STATUS\n")
	f.expectLine(t, `{"servo":{"current_pos":90,"default_pos":10,"allowed_pos":170},"servo_control":false}`)

	// D parks at the new default.
	f.sim.Port.Inject("D\n")
	f.expectLine(t, `{"status":"servo_control_disabled"}`)
	awaitServo(t, f.sim.Servo, 10)
}

func TestUnknownLineStaysSilent(t *testing.T) {
	f := startNode(t, testCfg())
	f.sim.Port.Inject("BOGUS\n")
	f.sim.Port.Inject("a\n")
	f.expectNoLine(t, 80*time.Millisecond)
}

func TestAuthorizedScan(t *testing.T) {
	cfg := testCfg()
	cfg.HoldMs = 150
	f := startNode(t, cfg)

	scanSub := f.conn.Subscribe(bus.T("door", "event", "scan"))
	defer f.conn.Unsubscribe(scanSub)

	f.sim.Reader.InjectUID([]byte{0xA1, 0xB2, 0xC3, 0xD4})
	f.expectLine(t, `{"status":"authorized","uid":"A1B2C3D4"}`)

	awaitLamps(t, f.sim.Lamps, true, false)
	awaitServo(t, f.sim.Servo, 180)
	f.awaitState(t, func(st types.DoorState) bool { return st.Enabled })

	select {
	case m := <-scanSub.Channel():
		ev, ok := m.Payload.(types.ScanEvent)
		if !ok {
			t.Fatalf("scan payload type %T", m.Payload)
		}
		if ev.UID != "A1B2C3D4" || !ev.Granted {
			t.Fatalf("scan event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no scan event")
	}

	// Hold expires: lamps clear and the card session ends.
	awaitLamps(t, f.sim.Lamps, false, false)
	deadline := time.Now().Add(2 * time.Second)
	for f.sim.Reader.CardPresent() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.sim.Reader.CardPresent() {
		t.Fatal("card session not ended after hold")
	}
}

func TestUnauthorizedScan(t *testing.T) {
	cfg := testCfg()
	cfg.HoldMs = 150
	f := startNode(t, cfg)

	scanSub := f.conn.Subscribe(bus.T("door", "event", "scan"))
	defer f.conn.Unsubscribe(scanSub)

	f.sim.Reader.InjectUID([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	f.expectLine(t, `{"status":"unauthorized","uid":"DEADBEEF"}`)

	awaitLamps(t, f.sim.Lamps, false, true)
	select {
	case m := <-scanSub.Channel():
		ev := m.Payload.(types.ScanEvent)
		if ev.Granted {
			t.Fatal("unauthorized scan reported granted")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no scan event")
	}

	// A denied scan must not move the horn.
	time.Sleep(50 * time.Millisecond)
	awaitServo(t, f.sim.Servo, 90)
}

func TestHoldBlocksNextScan(t *testing.T) {
	cfg := testCfg()
	cfg.HoldMs = 150
	f := startNode(t, cfg)

	f.sim.Reader.InjectUID([]byte{0xA1, 0xB2, 0xC3, 0xD4})
	f.sim.Reader.InjectUID([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	f.expectLine(t, `{"status":"authorized","uid":"A1B2C3D4"}`)
	// The second card waits out the hold window.
	f.expectNoLine(t, 60*time.Millisecond)
	f.expectLine(t, `{"status":"unauthorized","uid":"DEADBEEF"}`)
}

func TestReaderFaultPublished(t *testing.T) {
	f := startNode(t, testCfg())

	faultSub := f.conn.Subscribe(bus.T("door", "event", "fault"))
	defer f.conn.Unsubscribe(faultSub)

	f.sim.Reader.FailNext(mfrc522.ErrChecksum)

	select {
	case m := <-faultSub.Channel():
		fault, ok := m.Payload.(types.Fault)
		if !ok {
			t.Fatalf("fault payload type %T", m.Payload)
		}
		if fault.Op != "read_uid" || fault.Code != "checksum" {
			t.Fatalf("fault = %+v", fault)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no fault event")
	}
	f.expectNoLine(t, 50*time.Millisecond)
}

func TestTxFrameFunnel(t *testing.T) {
	f := startNode(t, testCfg())
	f.conn.Publish(f.conn.NewMessage(bus.T("serial", "tx"),
		types.TxFrame{Line: `{"status":{"up":true}}`}, false))
	f.expectLine(t, `{"status":{"up":true}}`)
}

func TestCommandsWaitForConfig(t *testing.T) {
	f := startBare(t)

	f.sim.Port.Inject("STATUS\n")
	f.expectNoLine(t, 80*time.Millisecond)

	f.configure(t, testCfg())
	f.sim.Port.Inject("STATUS\n")
	f.expectLine(t, `{"servo":{"current_pos":90,"default_pos":90,"allowed_pos":180},"servo_control":false}`)
}

func TestScansWaitForConfig(t *testing.T) {
	f := startBare(t)

	f.sim.Reader.InjectUID([]byte{0xA1, 0xB2, 0xC3, 0xD4})
	f.expectNoLine(t, 80*time.Millisecond)

	f.configure(t, testCfg())
	f.expectLine(t, `{"status":"authorized","uid":"A1B2C3D4"}`)
}
