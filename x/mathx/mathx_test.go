package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5,0,10) = %d", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp(-3,0,10) = %d", got)
	}
	if got := Clamp(99, 0, 10); got != 10 {
		t.Errorf("Clamp(99,0,10) = %d", got)
	}
	// Swapped bounds.
	if got := Clamp(5, 10, 0); got != 5 {
		t.Errorf("Clamp(5,10,0) = %d", got)
	}
}

func TestBetween(t *testing.T) {
	cases := []struct {
		v    int
		want bool
	}{
		{-1, false}, {0, true}, {90, true}, {180, true}, {181, false},
	}
	for _, c := range cases {
		if got := Between(c.v, 0, 180); got != c.want {
			t.Errorf("Between(%d,0,180) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestScale(t *testing.T) {
	// Angle -> servo pulse width, the shape the actuator adapters use.
	cases := []struct {
		x, want int
	}{
		{0, 544},
		{180, 2400},
		{90, 1472},
		{-5, 544},   // clamps low
		{999, 2400}, // clamps high
	}
	for _, c := range cases {
		if got := Scale(c.x, 0, 180, 544, 2400); got != c.want {
			t.Errorf("Scale(%d) = %d, want %d", c.x, got, c.want)
		}
	}
	if got := Scale(42, 7, 7, 100, 200); got != 100 {
		t.Errorf("degenerate in range: got %d", got)
	}
}
