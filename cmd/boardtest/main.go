//go:build rp2040

// Hardware bring-up for the door node board. Exercises each peripheral
// in turn so freshly soldered hardware can be checked without the full
// firmware: servo sweep, lamp check, then a scan loop that prints card
// UIDs and echoes them out the serial port.
//
// Flash with: tinygo flash -target pico ./cmd/boardtest
package main

import (
	"time"

	"doorcode-go/platform"
	"doorcode-go/x/conv"
)

func main() {
	time.Sleep(3 * time.Second)
	println("[boardtest] setting up board …")

	hw, err := platform.Setup()
	if err != nil {
		println("[boardtest] setup failed:", err.Error())
		return
	}

	println("[boardtest] servo sweep …")
	for _, deg := range []int{0, 90, 180, 90} {
		hw.Servo.SetAngle(deg)
		time.Sleep(600 * time.Millisecond)
	}

	println("[boardtest] lamp check …")
	hw.Lamps.Set(true, false)
	time.Sleep(500 * time.Millisecond)
	hw.Lamps.Set(false, true)
	time.Sleep(500 * time.Millisecond)
	hw.Lamps.Set(false, false)

	println("[boardtest] scan loop; present a card …")
	line := make([]byte, 0, 32)
	for {
		if hw.Reader.CardPresent() {
			uid, err := hw.Reader.ReadUID()
			if err != nil {
				println("[boardtest] read error:", err.Error())
			} else {
				line = append(line[:0], "uid "...)
				line = conv.AppendHexUpper(line, uid)
				println("[boardtest]", string(line))
				line = append(line, '\n')
				if _, err := hw.Port.Write(line); err != nil {
					println("[boardtest] uart write error:", err.Error())
				}
			}
			if err := hw.Reader.EndSession(); err != nil {
				println("[boardtest] end session:", err.Error())
			}
			// Let the card leave the field before polling again.
			time.Sleep(500 * time.Millisecond)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
