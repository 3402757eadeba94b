package event

import (
	"testing"

	"github.com/vibeproxy/tunnel/internal/session"
)

type recordingHost struct {
	joined, left int
	chats        []string
}

func (r *recordingHost) PlayerJoined(*session.Session) { r.joined++ }
func (r *recordingHost) PlayerLeft(*session.Session)    { r.left++ }
func (r *recordingHost) ChatSent(_ *session.Session, text string) {
	r.chats = append(r.chats, text)
}

func TestMultiFansOutToEveryHost(t *testing.T) {
	a, b := &recordingHost{}, &recordingHost{}
	m := Multi{a, b}
	s := session.New("127.0.0.1")

	m.PlayerJoined(s)
	m.ChatSent(s, "hi")
	m.PlayerLeft(s)

	for _, h := range []*recordingHost{a, b} {
		if h.joined != 1 || h.left != 1 || len(h.chats) != 1 || h.chats[0] != "hi" {
			t.Errorf("host state = %+v, want one of each event", h)
		}
	}
}

func TestNoOpDoesNothing(t *testing.T) {
	var h NoOp
	s := session.New("127.0.0.1")
	h.PlayerJoined(s)
	h.PlayerLeft(s)
	h.ChatSent(s, "hi")
}
