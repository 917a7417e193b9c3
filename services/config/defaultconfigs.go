package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgDoornode = `{
  "door": {
    "default_pos": 90,
    "allowed_pos": 180,
    "allow": ["A1B2C3D4", "E5F6G7H8"],
    "hold_ms": 1000,
    "poll_ms": 50
  },
  "status": {
    "period_ms": 2000
  }
}`

var embeddedConfigs = map[string][]byte{
	"doornode": []byte(cfgDoornode),
}
