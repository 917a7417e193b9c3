package types

// ---- Controller state (retained on door/state) ----

type DoorState struct {
	Enabled    bool  `json:"enabled"`
	Position   int   `json:"position"` // commanded angle, degrees
	DefaultPos int   `json:"default_pos"`
	AllowedPos int   `json:"allowed_pos"`
	Cards      int   `json:"cards"` // allow-list size
	TS         int64 `json:"ts_ms"`
}

// ---- Events (non-retained) ----

// ScanEvent is published on door/event/scan for every evaluated card.
type ScanEvent struct {
	UID     string `json:"uid"` // uppercase hex
	Granted bool   `json:"granted"`
	TS      int64  `json:"ts_ms"`
}

// Fault is published on door/event/fault when the reader misbehaves.
type Fault struct {
	Op   string `json:"op"`   // "read_uid", "end_session", ...
	Code string `json:"code"` // errcode short code
	TS   int64  `json:"ts_ms"`
}

// ---- Serial TX (non-retained on serial/tx) ----

// TxFrame is one line for the command channel. The door service owns
// the port; anything else that wants to transmit publishes one of
// these. Line excludes the terminator.
type TxFrame struct {
	Line string `json:"line"`
}
