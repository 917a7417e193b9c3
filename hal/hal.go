// Package hal declares the hardware surfaces the door controller
// drives. Implementations live in platform (real pins, sims) and
// drivers (mfrc522); services depend only on these interfaces.
package hal

import "context"

// Port is a line-capable serial channel. Write must accept a whole
// frame in one call; RecvSomeContext returns at least one byte or
// blocks until ctx is done.
type Port interface {
	Write(p []byte) (int, error)
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// CardReader is one proximity reader session surface.
// ReadUID's slice is only valid until the next reader call.
type CardReader interface {
	CardPresent() bool
	ReadUID() ([]byte, error)
	EndSession() error
}

// Actuator is a positional servo horn. Angle is degrees, 0..180;
// implementations clamp rather than error.
type Actuator interface {
	SetAngle(deg int)
}

// Indicators drives the feedback lamps (affirmative, negative).
type Indicators interface {
	Set(granted, denied bool)
}

// Board groups the wired hardware for one node.
type Board struct {
	Port   Port
	Reader CardReader
	Servo  Actuator
	Lamps  Indicators
}
