package message

import "testing"

func TestParseJoinLeft(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		player string
		joined bool
	}{
		{"§ealice joined the game.", true, "alice", true},
		{"§ebob left the game.", true, "bob", false},
		{"hello world", false, "", false},
	}
	for _, tt := range tests {
		ev, ok := ParseJoinLeft(tt.raw)
		if ok != tt.wantOK {
			t.Fatalf("ParseJoinLeft(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
		}
		if !ok {
			continue
		}
		if ev.Player != tt.player || ev.Joined != tt.joined {
			t.Errorf("ParseJoinLeft(%q) = %+v, want player=%q joined=%v", tt.raw, ev, tt.player, tt.joined)
		}
	}
}

func TestMessageString(t *testing.T) {
	m := Colored("hi", "red")
	if got := m.String(); got != `{"text":"hi","color":"red"}` {
		t.Errorf("String() = %q", got)
	}
}

func TestWrapShortUnaffected(t *testing.T) {
	short := "hello"
	got := Wrap(short)
	if len(got) != 1 || got[0] != short {
		t.Fatalf("Wrap(short) = %v", got)
	}
}

func TestWrapSplitsLongMessage(t *testing.T) {
	long := make([]rune, MaxChatLength*2+5)
	for i := range long {
		long[i] = 'a'
	}
	got := Wrap(string(long))
	if len(got) != 3 {
		t.Fatalf("Wrap(long) produced %d parts, want 3", len(got))
	}
	var total int
	for _, part := range got {
		total += len([]rune(part))
	}
	if total != len(long) {
		t.Errorf("Wrap(long) total runes = %d, want %d", total, len(long))
	}
}
