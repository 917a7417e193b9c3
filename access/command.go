package access

import (
	"bytes"
	"encoding/json"

	"doorcode-go/x/mathx"
)

// Wire commands. Anything else stays silent.
const (
	cmdEnable  = "A"
	cmdDisable = "D"
	cmdStatus  = "STATUS"
	cmdSetPos  = "SETPOS:"
)

// configUpdate is the JSON object command. Absent keys leave the
// current value untouched. Values are not range-checked; an
// out-of-range idle simply parks the horn there on the next disable.
type configUpdate struct {
	DefaultPos *int `json:"default_pos"`
	AllowedPos *int `json:"allowed_pos"`
}

// HandleLine executes one command line. ok is false when the line is
// unknown or malformed: nothing changed, nothing to write back.
// Matching is exact and case-sensitive after trimming.
func (c *Controller) HandleLine(line []byte) (Response, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Response{}, false
	}

	if line[0] == '{' {
		var u configUpdate
		if err := json.Unmarshal(line, &u); err == nil {
			if u.DefaultPos != nil {
				c.cfg.IdlePos = *u.DefaultPos
			}
			if u.AllowedPos != nil {
				c.cfg.GrantedPos = *u.AllowedPos
			}
			return Response{Kind: KindConfigUpdated}, true
		}
		// Malformed JSON falls through to exact matching below,
		// which cannot match a '{' line: silence.
	}

	switch {
	case string(line) == cmdEnable:
		c.enabled = true
		c.position = c.cfg.GrantedPos
		return Response{Kind: KindEnabled}, true

	case string(line) == cmdDisable:
		c.enabled = false
		c.position = c.cfg.IdlePos
		c.servo.SetAngle(c.position)
		return Response{Kind: KindDisabled}, true

	case string(line) == cmdStatus:
		return Response{
			Kind:    KindStatus,
			Current: c.position,
			Idle:    c.cfg.IdlePos,
			Granted: c.cfg.GrantedPos,
			Enabled: c.enabled,
		}, true

	case bytes.HasPrefix(line, []byte(cmdSetPos)):
		angle := atoiLenient(line[len(cmdSetPos):])
		if !mathx.Between(angle, 0, 180) {
			return Response{Kind: KindInvalidPosition}, true
		}
		c.position = angle
		return Response{Kind: KindPositionSet, Angle: angle}, true
	}

	return Response{}, false
}

// atoiLenient parses like strtol base 10 truncated to the leading
// number: optional whitespace and sign, then digits up to the first
// non-digit. No digits means 0. Accumulation stops once the value can
// no longer be a valid angle, so absurd inputs cannot wrap.
func atoiLenient(b []byte) int {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}
	n := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		if n < 1<<24 {
			n = n*10 + int(b[i]-'0')
		}
		i++
	}
	if neg {
		return -n
	}
	return n
}
