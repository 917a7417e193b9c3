//go:build rp2040

// On-device check of the message bus. go test cannot run on the Pico,
// so the delivery semantics the node leans on are verified here:
// retained replay, wildcard matching, retained clear and the
// drop-oldest queue.
//
// Flash with: tinygo flash -target pico ./bus/cmd/selftest
package main

import (
	"time"

	"machine"

	"doorcode-go/bus"
	"doorcode-go/x/conv"
)

func expect(sub *bus.Subscription, want string, timeout time.Duration) bool {
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		return ok && s == want
	case <-time.After(timeout):
		return false
	}
}

func expectSilence(sub *bus.Subscription, timeout time.Duration) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(timeout):
		return true
	}
}

func testPubSub() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("door", "state"))
	c.Publish(c.NewMessage(bus.T("door", "state"), "open", false))
	return expect(sub, "open", 100*time.Millisecond)
}

func testRetainedReplay() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	c.Publish(c.NewMessage(bus.T("config", "door"), "cfg", true))
	sub := c.Subscribe(bus.T("config", "door"))
	return expect(sub, "cfg", 100*time.Millisecond)
}

func testRetainedClear() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	c.Publish(c.NewMessage(bus.T("config", "door"), "cfg", true))
	c.Publish(c.NewMessage(bus.T("config", "door"), nil, true))
	sub := c.Subscribe(bus.T("config", "door"))
	return expectSilence(sub, 60*time.Millisecond)
}

func testWildcardOne() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("door", bus.WildcardOne))
	c.Publish(c.NewMessage(bus.T("door", "scan"), "hit", false))
	if !expect(sub, "hit", 100*time.Millisecond) {
		return false
	}
	// "+" is exactly one token: a deeper topic must not match.
	c.Publish(c.NewMessage(bus.T("door", "scan", "extra"), "miss", false))
	return expectSilence(sub, 60*time.Millisecond)
}

func testWildcardAll() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("door", bus.WildcardAll))
	// "#" also matches the zero-token remainder.
	c.Publish(c.NewMessage(bus.T("door"), "root", false))
	if !expect(sub, "root", 100*time.Millisecond) {
		return false
	}
	c.Publish(c.NewMessage(bus.T("door", "fault", "read"), "deep", false))
	return expect(sub, "deep", 100*time.Millisecond)
}

func testDropOldest() bool {
	b := bus.NewBus(2)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("serial", "tx"))
	c.Publish(c.NewMessage(bus.T("serial", "tx"), "m1", false))
	c.Publish(c.NewMessage(bus.T("serial", "tx"), "m2", false))
	c.Publish(c.NewMessage(bus.T("serial", "tx"), "m3", false))
	// Queue of 2: m1 is stolen to make room for m3.
	return expect(sub, "m2", 100*time.Millisecond) &&
		expect(sub, "m3", 100*time.Millisecond)
}

func testUnsubscribeCloses() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(bus.T("door", "state"))
	c.Unsubscribe(sub)
	c.Publish(c.NewMessage(bus.T("door", "state"), "late", false))
	_, ok := <-sub.Channel()
	return !ok
}

func main() {
	// Give USB CDC time to enumerate so logs show up reliably.
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High() // running

	tests := []struct {
		name string
		fn   func() bool
	}{
		{"pub_sub", testPubSub},
		{"retained_replay", testRetainedReplay},
		{"retained_clear", testRetainedClear},
		{"wildcard_one", testWildcardOne},
		{"wildcard_all", testWildcardAll},
		{"drop_oldest", testDropOldest},
		{"unsubscribe_closes", testUnsubscribeCloses},
	}

	passed, failed := 0, 0
	println("== bus self-test starting ==")
	for _, tc := range tests {
		if tc.fn() {
			println("[PASS]", tc.name)
			passed++
		} else {
			println("[FAIL]", tc.name)
			failed++
		}
		time.Sleep(10 * time.Millisecond)
	}

	report := conv.AppendInt([]byte("== done: "), passed)
	report = append(report, " passed, "...)
	report = conv.AppendInt(report, failed)
	report = append(report, " failed =="...)
	println(string(report))

	// Solid LED when everything passed, slow blink otherwise.
	if failed == 0 {
		for {
			led.High()
			time.Sleep(2 * time.Second)
		}
	}
	for {
		led.High()
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
