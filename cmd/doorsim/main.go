//go:build !rp2040 && !rp2350

// Command doorsim runs the full node against a simulated board behind
// a readline REPL. Plain input lines go to the node's serial port
// verbatim (A, D, STATUS, SETPOS:<n>, {...}); lines starting with "!"
// drive the simulation instead:
//
//	!scan A1 B2 C3 D4    queue a card (hex bytes, or one hex string)
//	!fail                make the next UID read fail
//	!servo               print the servo position
//	!lamps               print the lamp states
//	!state               print the controller state
//	!help                list directives
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"doorcode-go/bus"
	"doorcode-go/drivers/mfrc522"
	"doorcode-go/platform"
	"doorcode-go/services/config"
	"doorcode-go/services/door"
	"doorcode-go/services/status"
	"doorcode-go/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "doornode")

	b := bus.NewBus(16)
	sim := platform.NewSim()

	go door.Run(ctx, b.NewConnection("door"), sim.Board())
	go status.Run(ctx, b.NewConnection("status"))
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	// Mirror every frame the node writes onto the console.
	go func() {
		for frame := range sim.Port.Tx() {
			fmt.Fprintf(rl.Stdout(), "<- %s", frame)
		}
	}()

	repl := b.NewConnection("repl")
	printHelp(rl)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return nil // EOF
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "!") {
			sim.Port.Inject(line + "\n")
			continue
		}

		args, err := shlex.Split(line[1:])
		if err != nil || len(args) == 0 {
			fmt.Fprintln(rl.Stdout(), "bad directive; try !help")
			continue
		}
		switch args[0] {
		case "scan":
			uid, err := parseUID(args[1:])
			if err != nil {
				fmt.Fprintln(rl.Stdout(), err.Error())
				continue
			}
			sim.Reader.InjectUID(uid)

		case "fail":
			sim.Reader.FailNext(mfrc522.ErrTimeout)

		case "servo":
			fmt.Fprintf(rl.Stdout(), "servo: %d deg (%d us)\n", sim.Servo.Angle(), sim.Servo.Micros())

		case "lamps":
			g, d := sim.Lamps.State()
			fmt.Fprintf(rl.Stdout(), "lamps: granted=%v denied=%v\n", g, d)

		case "state":
			printState(rl, repl)

		case "help":
			printHelp(rl)

		default:
			fmt.Fprintf(rl.Stdout(), "unknown directive %q; try !help\n", args[0])
		}
	}
}

// parseUID accepts either one hex string ("A1B2C3D4") or separate hex
// byte tokens ("A1 B2 C3 D4").
func parseUID(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: !scan <hex bytes>")
	}
	if len(args) == 1 && len(args[0]) > 2 {
		s := args[0]
		if len(s)%2 != 0 {
			return nil, fmt.Errorf("odd-length hex string %q", s)
		}
		args = make([]string, 0, len(s)/2)
		for i := 0; i < len(s); i += 2 {
			args = append(args, s[i:i+2])
		}
	}
	uid := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad hex byte %q", a)
		}
		uid = append(uid, byte(v))
	}
	return uid, nil
}

func printState(rl *readline.Instance, conn *bus.Connection) {
	sub := conn.Subscribe(bus.T("door", "state"))
	defer conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		if st, ok := m.Payload.(types.DoorState); ok {
			fmt.Fprintf(rl.Stdout(), "enabled=%v position=%d default=%d allowed=%d cards=%d\n",
				st.Enabled, st.Position, st.DefaultPos, st.AllowedPos, st.Cards)
			return
		}
		fmt.Fprintln(rl.Stdout(), "unexpected state payload")
	case <-time.After(200 * time.Millisecond):
		fmt.Fprintln(rl.Stdout(), "no state yet")
	}
}

func printHelp(rl *readline.Instance) {
	fmt.Fprint(rl.Stdout(), `serial: A | D | STATUS | SETPOS:<deg> | {"default_pos":N,"allowed_pos":N}
sim:    !scan <hex> | !fail | !servo | !lamps | !state | !help
`)
}
