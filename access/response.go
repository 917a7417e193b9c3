package access

import (
	"doorcode-go/errcode"
	"doorcode-go/x/conv"
)

// Kind selects the wire response shape.
type Kind uint8

const (
	KindNone Kind = iota
	KindEnabled
	KindDisabled
	KindStatus
	KindPositionSet
	KindInvalidPosition
	KindConfigUpdated
	KindAuthorized
	KindUnauthorized
)

// Response is one protocol reply. AppendWire renders the exact JSON
// line (no terminator) with no fmt or encoding/json on the path.
type Response struct {
	Kind Kind

	Angle int    // KindPositionSet
	UID   string // KindAuthorized / KindUnauthorized

	// KindStatus snapshot
	Current int
	Idle    int
	Granted int
	Enabled bool
}

func (r Response) AppendWire(dst []byte) []byte {
	switch r.Kind {
	case KindEnabled:
		return append(dst, `{"status":"servo_control_enabled"}`...)

	case KindDisabled:
		return append(dst, `{"status":"servo_control_disabled"}`...)

	case KindStatus:
		dst = append(dst, `{"servo":{"current_pos":`...)
		dst = conv.AppendInt(dst, r.Current)
		dst = append(dst, `,"default_pos":`...)
		dst = conv.AppendInt(dst, r.Idle)
		dst = append(dst, `,"allowed_pos":`...)
		dst = conv.AppendInt(dst, r.Granted)
		dst = append(dst, `},"servo_control":`...)
		dst = appendBool(dst, r.Enabled)
		return append(dst, '}')

	case KindPositionSet:
		dst = append(dst, `{"status":"position_set","angle":`...)
		dst = conv.AppendInt(dst, r.Angle)
		return append(dst, '}')

	case KindInvalidPosition:
		dst = append(dst, `{"error":"`...)
		dst = append(dst, string(errcode.InvalidPosition)...)
		return append(dst, '"', '}')

	case KindConfigUpdated:
		return append(dst, `{"status":"config_updated"}`...)

	case KindAuthorized:
		dst = append(dst, `{"status":"authorized","uid":"`...)
		dst = append(dst, r.UID...)
		return append(dst, '"', '}')

	case KindUnauthorized:
		dst = append(dst, `{"status":"unauthorized","uid":"`...)
		dst = append(dst, r.UID...)
		return append(dst, '"', '}')
	}
	return dst
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}
