package errcode

import (
	"errors"
	"testing"
)

func TestCodeIsError(t *testing.T) {
	var err error = InvalidPosition
	if err.Error() != "invalid_position" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Error("nil should map to OK")
	}
	if Of(Timeout) != Timeout {
		t.Error("bare Code should pass through")
	}
	e := &E{C: InvalidPayload, Op: "decode", Msg: "bad frame"}
	if Of(e) != InvalidPayload {
		t.Error("wrapper should expose its code")
	}
	if Of(errors.New("boom")) != Error {
		t.Error("unknown errors should map to Error")
	}
}

func TestEUnwrap(t *testing.T) {
	cause := errors.New("spi write failed")
	e := &E{C: IOError, Op: "reader", Err: cause}
	if !errors.Is(e, cause) {
		t.Error("Unwrap should expose the cause")
	}
	if e.Error() != "io_error" {
		t.Errorf("got %q", e.Error())
	}
}

func TestMapDriverErr(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{errors.New("mfrc522: no card"), NoCard},
		{errors.New("mfrc522: timeout"), Timeout},
		{errors.New("mfrc522: collision"), Collision},
		{errors.New("mfrc522: uid checksum"), Checksum},
		{errors.New("mfrc522: protocol error"), Protocol},
		{errors.New("spi: bus fault"), IOError},
		{Timeout, Timeout}, // already a Code
	}
	for _, c := range cases {
		if got := MapDriverErr(c.err); got != c.want {
			t.Errorf("MapDriverErr(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
