package bots

import "testing"

func TestIsBotRespectsCase(t *testing.T) {
	r := NewMemRegistry("NinjaBot")
	if !r.IsBot("NinjaBot") {
		t.Fatal("expected NinjaBot to be a bot")
	}
	if r.IsBot("ninjabot") {
		t.Fatal("expected case-sensitive mismatch to not be a bot")
	}
}

func TestAddRemove(t *testing.T) {
	r := NewMemRegistry()
	r.Add("Steve")
	if !r.IsBot("Steve") {
		t.Fatal("expected Steve to be added")
	}
	r.Remove("Steve")
	if r.IsBot("Steve") {
		t.Fatal("expected Steve to be removed")
	}
}
