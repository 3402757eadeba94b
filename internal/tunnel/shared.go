package tunnel

import (
	"github.com/vibeproxy/tunnel/internal/auth"
	"github.com/vibeproxy/tunnel/internal/bots"
	"github.com/vibeproxy/tunnel/internal/chest"
	"github.com/vibeproxy/tunnel/internal/command"
	"github.com/vibeproxy/tunnel/internal/config"
	"github.com/vibeproxy/tunnel/internal/event"
	"github.com/vibeproxy/tunnel/internal/message"
	"github.com/vibeproxy/tunnel/internal/translator"
)

// Shared is the immutable collaborator graph every Tunnel for every player
// holds a reference to (spec.md §2's "reference to the shared Server").
// Unlike Session, nothing here is per-player; the collaborators listed
// serialize their own mutations internally.
type Shared struct {
	Options    config.Options
	Perm       config.PermissionConfig
	Chests     chest.Registry
	Bots       bots.Registry
	Auth       auth.Authenticator
	Events     event.Host
	Commands   command.Processor
	Translator translator.Translator
	Loopback   message.LoopbackTracker

	// CommandPrefix is '/' or '!', selected at construction time from
	// config's useSlashes flag, per spec.md §4.2's 0x03 hook.
	CommandPrefix byte

	ProtocolVersion   int32
	MinecraftVersion  string
	ServerDescription string

	// PlayerCount reports the current connected player count for the
	// server-list-ping rewrite (0xFF). Supplied by the out-of-scope
	// acceptor; nil is treated as zero.
	PlayerCount func() int
}

func (s *Shared) playerCount() int {
	if s.PlayerCount == nil {
		return 0
	}
	return s.PlayerCount()
}
