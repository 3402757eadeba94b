// Package command implements the CommandProcessor collaborator: given a
// player's raw chat text starting with the configured command prefix, it
// either executes the command and returns no text (suppress) or returns a
// rewritten string to forward onward. Per the spec's scope, command parsing
// and execution are a collaborator boundary invoked as a single call with a
// message; this package ships a minimal reference implementation.
package command

import (
	"fmt"
	"strings"

	"github.com/vibeproxy/tunnel/internal/session"
)

// Processor is the CommandProcessor collaborator interface.
type Processor interface {
	// Process handles text (including the leading prefix character) issued
	// by s. Returning ok=false means the command was fully handled and the
	// original packet must be suppressed; ok=true means rewritten should be
	// forwarded to the server in its place.
	Process(s *session.Session, text string) (rewritten string, ok bool)
}

// KickFunc is called by the built-in /kick command.
type KickFunc func(player, reason string)

// MuteFunc is called by the built-in /mute command, which (unlike /lock and
// /unlock) acts on a player other than the issuer and so needs the same
// by-name callback indirection as KickFunc.
type MuteFunc func(player string, muted bool)

// Basic is a minimal reference Processor implementing /help, /kick, /mute,
// /lock and /unlock, and passing every other command straight through
// unmodified.
type Basic struct {
	Kick KickFunc
	Mute MuteFunc
}

// NewBasic creates a Basic processor. kick and mute may be nil, in which
// case the corresponding command reports that it is unavailable.
func NewBasic(kick KickFunc, mute MuteFunc) *Basic {
	return &Basic{Kick: kick, Mute: mute}
}

// Process implements Processor.
func (b *Basic) Process(s *session.Session, text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return text, true
	}
	switch strings.ToLower(strings.TrimLeft(fields[0], "/!")) {
	case "help":
		s.EnqueueInbound("Commands: /help, /kick <player> [reason], /mute <player> [on|off], /lock [name], /unlock")
		return "", false
	case "kick":
		if len(fields) < 2 {
			s.EnqueueInbound("Usage: /kick <player> [reason]")
			return "", false
		}
		if b.Kick == nil {
			s.EnqueueInbound("Kick is not available")
			return "", false
		}
		reason := "Kicked by a player"
		if len(fields) > 2 {
			reason = strings.Join(fields[2:], " ")
		}
		b.Kick(fields[1], reason)
		s.EnqueueInbound(fmt.Sprintf("Kicked %s", fields[1]))
		return "", false
	case "mute":
		if len(fields) < 2 {
			s.EnqueueInbound("Usage: /mute <player> [on|off]")
			return "", false
		}
		if b.Mute == nil {
			s.EnqueueInbound("Mute is not available")
			return "", false
		}
		muted := true
		if len(fields) > 2 {
			muted = strings.ToLower(fields[2]) != "off"
		}
		b.Mute(fields[1], muted)
		if muted {
			s.EnqueueInbound(fmt.Sprintf("Muted %s", fields[1]))
		} else {
			s.EnqueueInbound(fmt.Sprintf("Unmuted %s", fields[1]))
		}
		return "", false
	case "lock":
		s.SetChestAction(session.ChestActionLock)
		if len(fields) > 1 {
			name := strings.Join(fields[1:], " ")
			s.SetNextChestName(&name)
		} else {
			s.SetNextChestName(nil)
		}
		s.EnqueueInbound("Open the chest you want to lock")
		return "", false
	case "unlock":
		s.SetChestAction(session.ChestActionUnlock)
		s.EnqueueInbound("Open the chest you want to unlock")
		return "", false
	default:
		return text, true
	}
}
