package types

// ---- Service configuration (retained, one message per config/<key>) ----

// DoorConfig configures the access controller (topic config/door).
// Field names match the wire protocol's config-update keys.
type DoorConfig struct {
	DefaultPos int      `json:"default_pos"` // idle angle, degrees
	AllowedPos int      `json:"allowed_pos"` // granted angle, degrees
	Allow      []string `json:"allow"`       // authorized UIDs, uppercase hex
	HoldMs     int      `json:"hold_ms"`     // feedback hold after a scan
	PollMs     int      `json:"poll_ms"`     // reader poll period
}

// StatusConfig configures the periodic broadcaster (topic config/status).
type StatusConfig struct {
	PeriodMs int `json:"period_ms"` // 0 disables
}
