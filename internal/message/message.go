// Package message implements the structured-chat decoder and the outgoing
// JSON chat message builder. The decoder recognizes the legacy "X joined/left
// the game" notification embedded in a raw chat string (the format the
// upstream server emits, color-coded rather than JSON); the builder
// constructs the JSON chat payloads this proxy emits on its own behalf
// (kick reasons, translated system messages), adapted from the teacher's
// chat.Message JSON shape.
package message

import (
	"encoding/json"
	"regexp"
	"sync"
	"time"
)

// joinLeftPattern matches a color code, a player name, then "joined" or
// "left the game" - grounded on StreamTunnel's JOIN_PATTERN.
var joinLeftPattern = regexp.MustCompile(`\x{00a7}.((?:\d|\w|\x{00a7})*) (joined|left) the game\.?`)

// JoinLeftEvent is a decoded join/left notification.
type JoinLeftEvent struct {
	Player string
	Joined bool // false means left
}

// ParseJoinLeft attempts to decode raw as a join/left notification. Returns
// ok=false if raw does not match the pattern (most chat is not this).
func ParseJoinLeft(raw string) (ev JoinLeftEvent, ok bool) {
	m := joinLeftPattern.FindStringSubmatch(raw)
	if m == nil {
		return JoinLeftEvent{}, false
	}
	return JoinLeftEvent{Player: m[1], Joined: m[2] == "joined"}, true
}

// Message represents a Minecraft JSON chat message, the payload format used
// for system messages this proxy synthesizes and sends to the client.
type Message struct {
	Text          string    `json:"text"`
	Bold          bool      `json:"bold,omitempty"`
	Italic        bool      `json:"italic,omitempty"`
	Underlined    bool      `json:"underlined,omitempty"`
	Strikethrough bool      `json:"strikethrough,omitempty"`
	Obfuscated    bool      `json:"obfuscated,omitempty"`
	Color         string    `json:"color,omitempty"`
	Extra         []Message `json:"extra,omitempty"`
}

// String serializes the message to JSON.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// Text creates a plain text message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a colored text message.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// LoopbackTracker is the forward-chat loopback collaborator: it remembers
// text this proxy has just forwarded client->server so the server->client
// leg can recognize the server echoing it straight back to the sender and
// drop the duplicate, matching StreamTunnel's `messager.wasForwarded` check.
type LoopbackTracker interface {
	Mark(text string)
	WasForwarded(text string) bool
}

// ForwardTracker is an in-memory LoopbackTracker: a mutex-guarded map from
// forwarded text to the time it was sent, entries expiring after ttl so a
// coincidental repeat of the same line much later is not mistaken for an
// echo.
type ForwardTracker struct {
	mu      sync.Mutex
	pending map[string]time.Time
	ttl     time.Duration
}

// NewForwardTracker creates a ForwardTracker with the given expiry window.
func NewForwardTracker(ttl time.Duration) *ForwardTracker {
	return &ForwardTracker{pending: make(map[string]time.Time), ttl: ttl}
}

// Mark records text as just forwarded.
func (f *ForwardTracker) Mark(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[text] = time.Now()
}

// WasForwarded reports and consumes whether text was recently forwarded.
func (f *ForwardTracker) WasForwarded(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	sentAt, ok := f.pending[text]
	if !ok {
		return false
	}
	delete(f.pending, text)
	return time.Since(sentAt) <= f.ttl
}

// MaxChatLength is the longest raw chat string the upstream server accepts
// in a single packet before the client disconnects it as malformed.
const MaxChatLength = 100

// Wrap splits a chat message longer than MaxChatLength into multiple
// lines, each short enough to forward as a single 0x03 packet.
func Wrap(text string) []string {
	runes := []rune(text)
	if len(runes) <= MaxChatLength {
		return []string{text}
	}
	var out []string
	for len(runes) > 0 {
		n := MaxChatLength
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
