package tunnel

import (
	"errors"
	"io"

	"github.com/vibeproxy/tunnel/internal/crypto"
	"github.com/vibeproxy/tunnel/internal/tunnelerr"
	"github.com/vibeproxy/tunnel/internal/wire"
)

var errInvalidChallengeResponse = errors.New("tunnel: invalid client challenge response")

// handleEncryptionResponse implements the client's half of the transport
// upgrade (spec.md §4.4): the shared AES key and challenge-token echo the
// client sends in response to an EncryptionRequest. Only the client->server
// leg ever reads this packet off the wire, but both legs of the pair need
// their streams swapped to the cipher layer before either side's next read,
// so this hook installs encryption on itself and reaches across to its
// peer via the peer field set by the acceptor.
func (t *Tunnel) handleEncryptionResponse(r io.Reader, w io.Writer, opByte byte) error {
	keyLen, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	sharedKey, err := wire.ReadSpan(r, int(keyLen))
	if err != nil {
		return err
	}
	tokenLen, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	challengeResponse, err := wire.ReadSpan(r, int(tokenLen))
	if err != nil {
		return err
	}

	if !t.isServerTunnel {
		if !t.session.ClientEncryption.CheckChallengeToken(challengeResponse) {
			t.session.Kick("Invalid client response")
			return tunnelerr.Auth("encryption-response", opByte, errInvalidChallengeResponse)
		}
		t.session.ClientEncryption.SetEncryptedSharedKey(sharedKey)
		sharedKey = t.session.ServerEncryption.EncryptedSharedKey()

		if t.shared.Auth.UseCustAuth(t.session.Name()) {
			if err := t.shared.Auth.OnlineAuthenticate(t.session.Name()); err != nil {
				t.session.Kick("[CustAuth] Failed to login: User not premium")
				return tunnelerr.Auth("encryption-response", opByte, err)
			}
		}
	}

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, int16(len(sharedKey))); err != nil {
		return err
	}
	if _, err := wire.WriteSpan(w, sharedKey); err != nil {
		return err
	}
	challengeEcho := t.session.ServerEncryption.EncryptChallengeToken()
	if _, err := wire.WriteI16(w, int16(len(challengeEcho))); err != nil {
		return err
	}
	if _, err := wire.WriteSpan(w, challengeEcho); err != nil {
		return err
	}

	readCtx, writeCtx := t.directionCiphers()
	if err := t.installEncryption(readCtx, writeCtx); err != nil {
		return err
	}

	if t.peer != nil {
		peerReadCtx, peerWriteCtx := t.peer.directionCiphers()
		return t.peer.installEncryption(peerReadCtx, peerWriteCtx)
	}
	return nil
}

// directionCiphers returns this tunnel's read/write encryption contexts:
// readCtx decrypts what this tunnel reads, writeCtx encrypts what it
// writes, per the server/client wiring spec.md §4.4 describes.
func (t *Tunnel) directionCiphers() (readCtx, writeCtx crypto.Context) {
	if t.isServerTunnel {
		return t.session.ServerEncryption, t.session.ClientEncryption
	}
	return t.session.ClientEncryption, t.session.ServerEncryption
}

// handleEncryptionRequest implements the server's half of the transport
// upgrade: the server's RSA public key and challenge token, seen only by
// the server->client leg. It records the server's key on the session and
// answers with the client's own public key plus a reflected challenge
// token, matching the original's role as a transparent relay that swaps in
// its own key material without either endpoint noticing.
func (t *Tunnel) handleEncryptionRequest(r io.Reader, w io.Writer, opByte byte) error {
	serverID, err := wire.ReadUTF16(r)
	if err != nil {
		return err
	}
	if !t.shared.Auth.UseCustAuth(t.session.Name()) {
		serverID = "-"
	}

	keyLen, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	keyBytes, err := wire.ReadSpan(r, int(keyLen))
	if err != nil {
		return err
	}
	tokenLen, err := wire.ReadI16(r)
	if err != nil {
		return err
	}
	challengeToken, err := wire.ReadSpan(r, int(tokenLen))
	if err != nil {
		return err
	}

	t.session.ServerEncryption.SetPublicKey(keyBytes)
	ownKey := t.session.ClientEncryption.PublicKey()

	if _, err := wire.WriteU8(w, opByte); err != nil {
		return err
	}
	if _, err := wire.WriteUTF16(w, serverID); err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, int16(len(ownKey))); err != nil {
		return err
	}
	if _, err := wire.WriteSpan(w, ownKey); err != nil {
		return err
	}
	if _, err := wire.WriteI16(w, int16(len(challengeToken))); err != nil {
		return err
	}
	if _, err := wire.WriteSpan(w, challengeToken); err != nil {
		return err
	}

	t.session.ServerEncryption.SetChallengeToken(challengeToken)
	t.session.ClientEncryption.SetChallengeToken(challengeToken)
	return nil
}
