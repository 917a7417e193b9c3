// Package platform assembles the hal.Board for the build target. On
// RP2040 hardware Setup wires UART0, SPI0 + MFRC522, the servo PWM and
// the indicator LEDs; elsewhere it returns an in-memory simulation of
// the same board.
package platform

// Arduino-compatible servo pulse range: 0° maps to 544 µs, 180° to
// 2400 µs, on a 20 ms frame.
const (
	servoMinUS = 544
	servoMaxUS = 2400
)
