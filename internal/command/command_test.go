package command

import (
	"testing"

	"github.com/vibeproxy/tunnel/internal/session"
)

func TestHelpSuppressesAndQueuesMessage(t *testing.T) {
	b := NewBasic(nil, nil)
	s := session.New("127.0.0.1")
	_, ok := b.Process(s, "/help")
	if ok {
		t.Fatal("expected /help to be suppressed")
	}
	if got := s.DrainInbound(); len(got) != 1 {
		t.Fatalf("expected one queued message, got %v", got)
	}
}

func TestKickInvokesCallback(t *testing.T) {
	var gotPlayer, gotReason string
	b := NewBasic(func(player, reason string) {
		gotPlayer, gotReason = player, reason
	}, nil)
	s := session.New("127.0.0.1")
	_, ok := b.Process(s, "/kick bob being rude")
	if ok {
		t.Fatal("expected /kick to be suppressed")
	}
	if gotPlayer != "bob" || gotReason != "being rude" {
		t.Errorf("kick callback = (%q, %q), want (bob, being rude)", gotPlayer, gotReason)
	}
}

func TestMuteInvokesCallback(t *testing.T) {
	var gotPlayer string
	var gotMuted bool
	b := NewBasic(nil, func(player string, muted bool) {
		gotPlayer, gotMuted = player, muted
	})
	s := session.New("127.0.0.1")
	_, ok := b.Process(s, "/mute bob")
	if ok {
		t.Fatal("expected /mute to be suppressed")
	}
	if gotPlayer != "bob" || !gotMuted {
		t.Errorf("mute callback = (%q, %v), want (bob, true)", gotPlayer, gotMuted)
	}
}

func TestMuteOffInvokesCallbackWithFalse(t *testing.T) {
	var gotMuted bool
	gotMuted = true
	b := NewBasic(nil, func(player string, muted bool) {
		gotMuted = muted
	})
	s := session.New("127.0.0.1")
	if _, ok := b.Process(s, "/mute bob off"); ok {
		t.Fatal("expected /mute to be suppressed")
	}
	if gotMuted {
		t.Error("expected muted=false for /mute bob off")
	}
}

func TestLockQueuesActionAndName(t *testing.T) {
	b := NewBasic(nil, nil)
	s := session.New("127.0.0.1")
	_, ok := b.Process(s, "/lock My Stuff")
	if ok {
		t.Fatal("expected /lock to be suppressed")
	}
	if s.GetChestAction() != session.ChestActionLock {
		t.Errorf("GetChestAction() = %v, want ChestActionLock", s.GetChestAction())
	}
	if name := s.NextChestName(); name == nil || *name != "My Stuff" {
		t.Errorf("NextChestName() = %v, want \"My Stuff\"", name)
	}
}

func TestUnlockQueuesAction(t *testing.T) {
	b := NewBasic(nil, nil)
	s := session.New("127.0.0.1")
	_, ok := b.Process(s, "/unlock")
	if ok {
		t.Fatal("expected /unlock to be suppressed")
	}
	if s.GetChestAction() != session.ChestActionUnlock {
		t.Errorf("GetChestAction() = %v, want ChestActionUnlock", s.GetChestAction())
	}
}

func TestUnknownCommandPassesThrough(t *testing.T) {
	b := NewBasic(nil, nil)
	s := session.New("127.0.0.1")
	text, ok := b.Process(s, "/spawn")
	if !ok || text != "/spawn" {
		t.Fatalf("Process(/spawn) = (%q, %v), want (/spawn, true)", text, ok)
	}
}
