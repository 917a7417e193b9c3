//go:build rp2040

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/servo"

	"doorcode-go/drivers/mfrc522"
	"doorcode-go/hal"
	"doorcode-go/x/mathx"
)

// Wiring (Pico GP numbering). UART0 carries the line protocol on the
// board-default pins; SPI0 drives the reader.
const (
	serialBaud = 9600

	pinUARTTx = 0
	pinUARTRx = 1

	pinServo     = 2 // PWM slice 1, channel A
	pinLampGrant = 3
	pinLampDeny  = 4

	pinSPISDI = 16
	pinCS     = 17
	pinSPISCK = 18
	pinSPISDO = 19
)

// Setup configures the RP2040 peripherals and returns the live board.
func Setup() (hal.Board, error) {
	uart := uartx.UART0
	if err := uart.Configure(uartx.UARTConfig{
		BaudRate: serialBaud,
		TX:       machine.Pin(pinUARTTx),
		RX:       machine.Pin(pinUARTRx),
	}); err != nil {
		return hal.Board{}, err
	}

	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: 1_000_000,
		SCK:       machine.Pin(pinSPISCK),
		SDO:       machine.Pin(pinSPISDO),
		SDI:       machine.Pin(pinSPISDI),
	}); err != nil {
		return hal.Board{}, err
	}

	cs := machine.Pin(pinCS)
	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	cs.High()
	rdr := mfrc522.New(spi, cs)
	if err := rdr.Configure(); err != nil {
		return hal.Board{}, err
	}
	if v, err := rdr.Version(); err == nil {
		println("[board] mfrc522 version:", v)
	}

	pwm, err := pwmForPin(machine.Pin(pinServo))
	if err != nil {
		return hal.Board{}, err
	}
	sv, err := servo.New(pwm, machine.Pin(pinServo))
	if err != nil {
		return hal.Board{}, err
	}

	grant := machine.Pin(pinLampGrant)
	deny := machine.Pin(pinLampDeny)
	grant.Configure(machine.PinConfig{Mode: machine.PinOutput})
	deny.Configure(machine.PinConfig{Mode: machine.PinOutput})
	grant.Low()
	deny.Low()

	return hal.Board{
		Port:   uart,
		Reader: NewReader(rdr),
		Servo:  pwmServo{s: sv},
		Lamps:  gpioLamps{granted: grant, denied: deny},
	}, nil
}

// pwmForPin selects the PWM controller that owns the pin's slice.
func pwmForPin(pin machine.Pin) (servo.PWM, error) {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil, err
	}
	switch slice {
	case 0:
		return machine.PWM0, nil
	case 1:
		return machine.PWM1, nil
	case 2:
		return machine.PWM2, nil
	case 3:
		return machine.PWM3, nil
	case 4:
		return machine.PWM4, nil
	case 5:
		return machine.PWM5, nil
	case 6:
		return machine.PWM6, nil
	default:
		return machine.PWM7, nil
	}
}

// pwmServo maps degrees onto the servo pulse range.
type pwmServo struct {
	s servo.Servo
}

func (p pwmServo) SetAngle(deg int) {
	deg = mathx.Clamp(deg, 0, 180)
	p.s.SetMicroseconds(int16(mathx.Scale(deg, 0, 180, servoMinUS, servoMaxUS)))
}

// gpioLamps drives the indicator LEDs directly.
type gpioLamps struct {
	granted machine.Pin
	denied  machine.Pin
}

func (l gpioLamps) Set(granted, denied bool) {
	l.granted.Set(granted)
	l.denied.Set(denied)
}
