// Package auth implements the Authenticator collaborator: pending-request
// tracking for proxy-side auth (a web/portal login completed by IP before
// the game handshake arrives) plus guest-name assignment. Per the spec's
// scope, the authenticator's own network calls and upstream premium-auth
// protocol are a collaborator boundary; this package ships the in-memory
// reference implementation the handshake hook calls through.
package auth

import (
	"fmt"
	"sync"
)

// Request is a completed or pending login handed to the handshake hook by
// IP address.
type Request struct {
	Player string
	IP     string
}

// Authenticator is the collaborator interface consulted by the handshake
// (0x02) and encryption-response (0xFC) hooks.
type Authenticator interface {
	// GetAuthRequest returns the pending request for ip, if any.
	GetAuthRequest(ip string) (*Request, bool)
	// CompleteLogin finalizes req for player, clearing it from the pending set.
	CompleteLogin(req *Request, player string) error
	// GetFreeGuestName returns an unused guest display name.
	GetFreeGuestName() string
	// AllowGuestJoin reports whether guest logins are permitted.
	AllowGuestJoin() bool
	// UseCustAuth reports whether player should go through the custom
	// (proxy-mediated) auth flow rather than vanilla premium auth.
	UseCustAuth(player string) bool
	// OnlineAuthenticate performs premium (session-server) authentication
	// for player, returning an error on failure.
	OnlineAuthenticate(player string) error
	// IsMinecraftUp reports whether the upstream premium auth service is
	// currently reachable.
	IsMinecraftUp() bool
}

// MemAuthenticator is an in-memory reference Authenticator: pending requests
// keyed by IP, sequentially numbered guest names, and a static custom-auth
// allow/deny set. Real deployments back GetAuthRequest/OnlineAuthenticate
// with an HTTP call to a web portal and Mojang's session servers; that
// network layer is out of scope here.
type MemAuthenticator struct {
	mu             sync.Mutex
	pending        map[string]*Request
	nextGuest      int
	allowGuests    bool
	custAuthNames  map[string]bool
	minecraftUp    bool
	onlineVerify   func(player string) error
}

// NewMemAuthenticator creates an Authenticator. onlineVerify implements the
// premium-auth network call; pass nil to always succeed (useful for tests
// and offline-mode deployments).
func NewMemAuthenticator(allowGuests bool, onlineVerify func(player string) error) *MemAuthenticator {
	return &MemAuthenticator{
		pending:       make(map[string]*Request),
		allowGuests:   allowGuests,
		custAuthNames: make(map[string]bool),
		minecraftUp:   true,
		onlineVerify:  onlineVerify,
	}
}

// AddPendingRequest registers req so a subsequent handshake from req.IP can
// complete it. Called by the out-of-band portal/login surface, not by the
// tunnel itself.
func (a *MemAuthenticator) AddPendingRequest(req *Request) {
	a.mu.Lock()
	a.pending[req.IP] = req
	a.mu.Unlock()
}

// GetAuthRequest implements Authenticator.
func (a *MemAuthenticator) GetAuthRequest(ip string) (*Request, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	req, ok := a.pending[ip]
	return req, ok
}

// CompleteLogin implements Authenticator.
func (a *MemAuthenticator) CompleteLogin(req *Request, player string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if req == nil {
		return fmt.Errorf("auth: nil request for player %q", player)
	}
	delete(a.pending, req.IP)
	return nil
}

// GetFreeGuestName implements Authenticator, returning the next name in the
// sequence Guest1, Guest2, ...
func (a *MemAuthenticator) GetFreeGuestName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextGuest++
	return fmt.Sprintf("Guest%d", a.nextGuest)
}

// AllowGuestJoin implements Authenticator.
func (a *MemAuthenticator) AllowGuestJoin() bool { return a.allowGuests }

// SetCustAuth marks player as using the custom auth flow.
func (a *MemAuthenticator) SetCustAuth(player string, use bool) {
	a.mu.Lock()
	a.custAuthNames[player] = use
	a.mu.Unlock()
}

// UseCustAuth implements Authenticator.
func (a *MemAuthenticator) UseCustAuth(player string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.custAuthNames[player]
}

// OnlineAuthenticate implements Authenticator.
func (a *MemAuthenticator) OnlineAuthenticate(player string) error {
	if a.onlineVerify == nil {
		return nil
	}
	return a.onlineVerify(player)
}

// SetMinecraftUp records the current reachability of the upstream premium
// auth service, as observed by a background health check.
func (a *MemAuthenticator) SetMinecraftUp(up bool) {
	a.mu.Lock()
	a.minecraftUp = up
	a.mu.Unlock()
}

// IsMinecraftUp implements Authenticator.
func (a *MemAuthenticator) IsMinecraftUp() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.minecraftUp
}
