// Package access holds the door controller core: the allow list, the
// control state machine, the serial command grammar, and the wire
// response encoder. It is hardware-agnostic (the actuator arrives as
// an interface) and single-threaded: the owning service is the only
// caller.
package access

import (
	"doorcode-go/hal"
	"doorcode-go/x/conv"
)

// Config is the controller's tunable state. IdlePos is held while
// control is disabled, GrantedPos while enabled.
type Config struct {
	IdlePos    int
	GrantedPos int
	Allow      AllowList
}

// Feedback tells the caller which lamp to light after a scan.
// The zero value means both off.
type Feedback struct {
	Granted bool
	Denied  bool
}

// Controller tracks (control_enabled, current_position) and owns the
// actuator. Whenever control is disabled by a state transition the
// position returns to IdlePos.
type Controller struct {
	cfg      Config
	enabled  bool
	position int
	servo    hal.Actuator

	uidBuf [20]byte // hex render scratch, two digits per UID byte
}

// NewController starts disabled at the idle position. The actuator is
// not touched; call Reset to park the horn.
func NewController(cfg Config, servo hal.Actuator) *Controller {
	return &Controller{cfg: cfg, position: cfg.IdlePos, servo: servo}
}

// Reset returns the controller to its boot state and parks the horn.
func (c *Controller) Reset() {
	c.enabled = false
	c.position = c.cfg.IdlePos
	c.servo.SetAngle(c.position)
}

func (c *Controller) Enabled() bool   { return c.enabled }
func (c *Controller) Position() int   { return c.position }
func (c *Controller) IdlePos() int    { return c.cfg.IdlePos }
func (c *Controller) GrantedPos() int { return c.cfg.GrantedPos }
func (c *Controller) Cards() int      { return c.cfg.Allow.Len() }

// Assert pushes the commanded position to the actuator while control
// is enabled. The owning loop calls it every poll tick.
func (c *Controller) Assert() {
	if c.enabled {
		c.servo.SetAngle(c.position)
	}
}

// Evaluate decides one card scan. A match moves the controller to
// (enabled, granted position); a miss to (disabled, idle position).
// The response carries the normalized UID rendering.
func (c *Controller) Evaluate(uid []byte) (Response, Feedback) {
	hex := string(conv.AppendHexUpper(c.uidBuf[:0], uid))
	if c.cfg.Allow.Contains(hex) {
		c.enabled = true
		c.position = c.cfg.GrantedPos
		return Response{Kind: KindAuthorized, UID: hex}, Feedback{Granted: true}
	}
	c.enabled = false
	c.position = c.cfg.IdlePos
	return Response{Kind: KindUnauthorized, UID: hex}, Feedback{Denied: true}
}
