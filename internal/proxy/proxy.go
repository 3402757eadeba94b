// Package proxy implements the out-of-scope acceptor the tunnel package's
// doc comments refer to: it listens for client connections, dials the
// upstream server for each one, builds the shared Session and Tunnel pair,
// and runs the idle watchdog. Modeled on the teacher's pkg/server
// acceptLoop/handleConnection shape (net.Listener, a stop channel, one
// goroutine per connection), generalized from "be the Minecraft server" to
// "sit between a client and one".
package proxy

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/vibeproxy/tunnel/internal/crypto"
	"github.com/vibeproxy/tunnel/internal/session"
	"github.com/vibeproxy/tunnel/internal/tunnel"
)

// Config holds the listener and upstream-dial settings.
type Config struct {
	ListenAddr   string
	UpstreamAddr string
	DialTimeout  time.Duration
}

// Server accepts client connections and bridges each one to the upstream
// server through a pair of Tunnels.
type Server struct {
	cfg    Config
	shared *tunnel.Shared

	listener net.Listener
	stopCh   chan struct{}

	mu       sync.RWMutex
	sessions map[*session.Session]struct{}
}

// New creates a Server. shared is the collaborator graph every Tunnel pair
// this Server spawns will reference; its PlayerCount field is overwritten to
// report this Server's live connection count.
func New(cfg Config, shared *tunnel.Shared) *Server {
	s := &Server{
		cfg:      cfg,
		shared:   shared,
		stopCh:   make(chan struct{}),
		sessions: make(map[*session.Session]struct{}),
	}
	shared.PlayerCount = s.playerCount
	return s
}

// Start begins listening on cfg.ListenAddr and accepting connections in the
// background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("proxy: listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = listener
	pterm.Info.Printfln("proxy: listening on %s, forwarding to %s", s.cfg.ListenAddr, s.cfg.UpstreamAddr)

	go s.acceptLoop()
	return nil
}

// Stop closes the listener and flags every tracked session as kicked with a
// shutdown reason. It does not stop the sessions' Tunnels or close their
// sockets.
func (s *Server) Stop() {
	close(s.stopCh)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sess := range s.sessions {
		sess.Kick("Proxy shutting down")
	}
}

func (s *Server) playerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// KickPlayer implements command.KickFunc: it finds the tracked session
// named player and kicks it; a name with no tracked session is ignored.
func (s *Server) KickPlayer(player, reason string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sess := range s.sessions {
		if sess.Name() == player {
			sess.Kick(reason)
			return
		}
	}
}

// MutePlayer implements command.MuteFunc: it finds the tracked session named
// player and sets its mute flag.
func (s *Server) MutePlayer(player string, muted bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sess := range s.sessions {
		if sess.Name() == player {
			sess.SetMuted(muted)
			return
		}
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				pterm.Error.Printfln("proxy: accept: %v", err)
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

// handleConnection dials the upstream server, builds the shared Session and
// the two mirror-image Tunnels, wires them as peers, and runs both worker
// loops until either side exits.
func (s *Server) handleConnection(clientConn net.Conn) {
	defer clientConn.Close()

	dialer := net.Dialer{Timeout: s.cfg.DialTimeout}
	serverConn, err := dialer.Dial("tcp", s.cfg.UpstreamAddr)
	if err != nil {
		pterm.Error.Printfln("proxy: dial upstream %s: %v", s.cfg.UpstreamAddr, err)
		return
	}
	defer serverConn.Close()

	remoteIP, _, _ := net.SplitHostPort(clientConn.RemoteAddr().String())
	sess := session.New(remoteIP)

	clientCrypto, err := crypto.NewRSAContext()
	if err != nil {
		pterm.Error.Printfln("proxy: generate client key pair: %v", err)
		return
	}
	serverCrypto, err := crypto.NewRSAContext()
	if err != nil {
		pterm.Error.Printfln("proxy: generate server key pair: %v", err)
		return
	}
	sess.ClientEncryption = clientCrypto
	sess.ServerEncryption = serverCrypto

	s.track(sess)
	defer s.untrack(sess)

	toServer := tunnel.New(s.shared, sess, false, &directedConn{Conn: clientConn, src: clientConn, dst: serverConn}, sess.IPAddress())
	toClient := tunnel.New(s.shared, sess, true, &directedConn{Conn: serverConn, src: serverConn, dst: clientConn}, sess.IPAddress())
	toServer.SetPeer(toClient)
	toClient.SetPeer(toServer)

	go s.watchIdle(sess, toServer, toClient)

	go toServer.Start()
	go toClient.Start()

	// Either leg exiting (EOF, kick, protocol desync) must stop the other;
	// neither leg's own read ever unblocks on its own otherwise.
	select {
	case <-toServer.Done():
	case <-toClient.Done():
	}
	toServer.Stop()
	toClient.Stop()
	<-toServer.Done()
	<-toClient.Done()
}

// watchIdle stops both tunnels once the session has been silent past
// tunnel.IdleWindow, per spec.md §4.5's idle-watchdog invariant.
func (s *Server) watchIdle(sess *session.Session, legs ...*tunnel.Tunnel) {
	ticker := time.NewTicker(tunnel.IdleWindow / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !sess.IsActive(tunnel.IdleWindow) {
				sess.Kick("Took too long to respond")
				for _, leg := range legs {
					leg.Stop()
				}
				return
			}
		case <-legs[0].Done():
			return
		case <-legs[1].Done():
			return
		}
	}
}

func (s *Server) track(sess *session.Session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(sess *session.Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// directedConn adapts a pair of sockets into the single net.Conn a Tunnel
// expects: reads come from src, writes go to dst, and the embedded Conn
// (one of the two physical sockets) supplies addressing/deadline methods
// and the Close a Tunnel.Stop() triggers.
type directedConn struct {
	net.Conn
	src io.Reader
	dst io.Writer
}

func (c *directedConn) Read(p []byte) (int, error)  { return c.src.Read(p) }
func (c *directedConn) Write(p []byte) (int, error) { return c.dst.Write(p) }
