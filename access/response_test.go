package access

import "testing"

func TestAppendWireExactStrings(t *testing.T) {
	cases := []struct {
		name string
		r    Response
		want string
	}{
		{"enabled", Response{Kind: KindEnabled},
			`{"status":"servo_control_enabled"}`},
		{"disabled", Response{Kind: KindDisabled},
			`{"status":"servo_control_disabled"}`},
		{"status off", Response{Kind: KindStatus, Current: 90, Idle: 90, Granted: 180},
			`{"servo":{"current_pos":90,"default_pos":90,"allowed_pos":180},"servo_control":false}`},
		{"status on", Response{Kind: KindStatus, Current: 180, Idle: 90, Granted: 180, Enabled: true},
			`{"servo":{"current_pos":180,"default_pos":90,"allowed_pos":180},"servo_control":true}`},
		{"position set", Response{Kind: KindPositionSet, Angle: 45},
			`{"status":"position_set","angle":45}`},
		{"position zero", Response{Kind: KindPositionSet, Angle: 0},
			`{"status":"position_set","angle":0}`},
		{"invalid position", Response{Kind: KindInvalidPosition},
			`{"error":"invalid_position"}`},
		{"config updated", Response{Kind: KindConfigUpdated},
			`{"status":"config_updated"}`},
		{"authorized", Response{Kind: KindAuthorized, UID: "A1B2C3D4"},
			`{"status":"authorized","uid":"A1B2C3D4"}`},
		{"unauthorized", Response{Kind: KindUnauthorized, UID: "DEADBEEF"},
			`{"status":"unauthorized","uid":"DEADBEEF"}`},
		{"none", Response{}, ""},
	}
	for _, tc := range cases {
		got := string(tc.r.AppendWire(nil))
		if got != tc.want {
			t.Errorf("%s:\n got  %s\n want %s", tc.name, got, tc.want)
		}
	}
}

func TestAppendWireReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 96)
	r := Response{Kind: KindEnabled}

	out := r.AppendWire(buf)
	if &out[0] != &buf[:1][0] {
		t.Error("expected in-place append into the provided buffer")
	}

	// Second render into the same backing array.
	out2 := Response{Kind: KindDisabled}.AppendWire(out[:0])
	if string(out2) != `{"status":"servo_control_disabled"}` {
		t.Fatalf("got %s", out2)
	}
}
