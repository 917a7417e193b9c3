//go:build !rp2040 && !rp2350

package platform

import "doorcode-go/hal"

// Setup returns a simulated board on non-MCU builds. The node runs
// against it the same way it runs against hardware; nothing arrives on
// the simulated serial port unless something injects into it.
func Setup() (hal.Board, error) {
	return NewSim().Board(), nil
}
