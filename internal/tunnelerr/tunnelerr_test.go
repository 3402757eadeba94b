package tunnelerr

import (
	"errors"
	"testing"
)

func TestNewNilErrPassesThrough(t *testing.T) {
	if err := New(KindProtocolDesync, "op", 0x01, nil); err != nil {
		t.Fatalf("New(nil) = %v, want nil", err)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Desync("dispatch", 0x0F, cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestFatalClassification(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{Desync("x", 0, errors.New("e")), true},
		{Deny("x", 0, errors.New("e")), false},
		{Auth("x", 0, errors.New("e")), true},
		{Transport("x", 0, errors.New("e")), true},
		{Persistence("x", 0, errors.New("e")), false},
	}
	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.fatal {
			t.Errorf("Fatal(%v) = %v, want %v", tt.err, got, tt.fatal)
		}
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := Deny("chat", 0x03, errors.New("muted"))
	if !Is(err, KindPolicyDeny) {
		t.Fatal("expected Is to match PolicyDeny")
	}
	if Is(err, KindAuthFailure) {
		t.Fatal("expected Is to not match AuthFailure")
	}
}
