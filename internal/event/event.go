// Package event implements the EventHost collaborator: a narrow hook point
// for notifying the surrounding server of session lifecycle and chat events.
// Per the spec's scope, what a host does with these notifications (plugin
// dispatch, metrics, webhooks) is out of scope; this package ships a no-op
// reference implementation plus a small fan-out helper.
package event

import "github.com/vibeproxy/tunnel/internal/session"

// Host is the EventHost collaborator interface.
type Host interface {
	PlayerJoined(s *session.Session)
	PlayerLeft(s *session.Session)
	ChatSent(s *session.Session, text string)
}

// NoOp is a Host that does nothing, the default reference implementation.
type NoOp struct{}

func (NoOp) PlayerJoined(*session.Session)          {}
func (NoOp) PlayerLeft(*session.Session)             {}
func (NoOp) ChatSent(*session.Session, string)       {}

// Multi fans out every call to each Host in order.
type Multi []Host

func (m Multi) PlayerJoined(s *session.Session) {
	for _, h := range m {
		h.PlayerJoined(s)
	}
}

func (m Multi) PlayerLeft(s *session.Session) {
	for _, h := range m {
		h.PlayerLeft(s)
	}
}

func (m Multi) ChatSent(s *session.Session, text string) {
	for _, h := range m {
		h.ChatSent(s, text)
	}
}
