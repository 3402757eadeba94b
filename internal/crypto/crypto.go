// Package crypto defines the transport-upgrade encryption collaborator and
// ships one reference implementation. Per the spec's scope, the RSA/AES
// wrappers themselves are explicitly out of scope to design; this package's
// RSAContext exists only so the tunnel's encryption-handshake hook can be
// exercised end-to-end by tests without a real Minecraft client or server,
// built entirely on the standard library (crypto/rsa, crypto/aes,
// crypto/cipher, crypto/rand) since a from-scratch third-party RSA/AES
// library is not warranted for a carve-out the spec itself excludes.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"io"
)

// Context is the per-direction encryption state the handshake hook drives.
// One Context exists per player per direction (client-facing,
// server-facing), matching session.EncryptionContext.
type Context interface {
	SetPublicKey(b []byte)
	PublicKey() []byte
	SetChallengeToken(b []byte)
	CheckChallengeToken(b []byte) bool
	EncryptChallengeToken() []byte
	SetEncryptedSharedKey(b []byte)
	EncryptedSharedKey() []byte
	EncryptedReader(r io.Reader) io.Reader
	EncryptedWriter(w io.Writer) io.Writer
}

// RSAContext is the reference Context: RSA for the key/token exchange,
// AES-128-CFB (matching the original Minecraft protocol's stream cipher
// choice) for the symmetric session once established.
type RSAContext struct {
	priv *rsa.PrivateKey

	publicKeyDER   []byte
	peerPublicKey  *rsa.PublicKey
	challengeToken []byte
	sharedKey      []byte
}

// NewRSAContext generates a fresh RSA key pair for one side of one player's
// session.
func NewRSAContext() (*RSAContext, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	return &RSAContext{priv: priv, publicKeyDER: der}, nil
}

// SetPublicKey records the peer's DER-encoded RSA public key.
func (c *RSAContext) SetPublicKey(b []byte) {
	key, err := x509.ParsePKIXPublicKey(b)
	if err != nil {
		return
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return
	}
	c.peerPublicKey = rsaKey
}

// PublicKey returns this context's own DER-encoded RSA public key.
func (c *RSAContext) PublicKey() []byte { return c.publicKeyDER }

// SetChallengeToken records the plaintext challenge token for this context.
func (c *RSAContext) SetChallengeToken(b []byte) {
	c.challengeToken = append([]byte(nil), b...)
}

// CheckChallengeToken decrypts encrypted (RSA-encrypted by the peer with
// this context's public key) and compares it against the stored token.
func (c *RSAContext) CheckChallengeToken(encrypted []byte) bool {
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, c.priv, encrypted)
	if err != nil {
		return false
	}
	return string(plain) == string(c.challengeToken)
}

// EncryptChallengeToken encrypts this context's stored challenge token
// under the peer's public key, for the peer to later verify with
// CheckChallengeToken.
func (c *RSAContext) EncryptChallengeToken() []byte {
	if c.peerPublicKey == nil {
		return nil
	}
	out, err := rsa.EncryptPKCS1v15(rand.Reader, c.peerPublicKey, c.challengeToken)
	if err != nil {
		return nil
	}
	return out
}

// SetEncryptedSharedKey decrypts an RSA-encrypted AES key with this
// context's private key and installs it as the session's symmetric key.
func (c *RSAContext) SetEncryptedSharedKey(b []byte) {
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, c.priv, b)
	if err != nil {
		return
	}
	c.sharedKey = plain
}

// EncryptedSharedKey re-encrypts the installed shared key under the peer's
// public key, for forwarding to the other side of the tunnel.
func (c *RSAContext) EncryptedSharedKey() []byte {
	if c.peerPublicKey == nil || c.sharedKey == nil {
		return nil
	}
	out, err := rsa.EncryptPKCS1v15(rand.Reader, c.peerPublicKey, c.sharedKey)
	if err != nil {
		return nil
	}
	return out
}

// GenerateSharedKey creates a fresh random AES-128 key and installs it,
// called once by the side of the tunnel that originates the handshake.
func (c *RSAContext) GenerateSharedKey() error {
	key := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return err
	}
	c.sharedKey = key
	return nil
}

// EncryptedReader wraps r with AES-CFB keyed by the installed shared key,
// using the key itself as the IV (the original Minecraft protocol's choice,
// since both sides derive the IV identically from the shared secret and no
// separate IV exchange occurs).
func (c *RSAContext) EncryptedReader(r io.Reader) io.Reader {
	block, err := aes.NewCipher(c.sharedKey)
	if err != nil {
		return r
	}
	stream := cipher.NewCFBDecrypter(block, c.sharedKey)
	return &cipher.StreamReader{S: stream, R: r}
}

// EncryptedWriter wraps w with AES-CFB keyed by the installed shared key.
func (c *RSAContext) EncryptedWriter(w io.Writer) io.Writer {
	block, err := aes.NewCipher(c.sharedKey)
	if err != nil {
		return w
	}
	stream := cipher.NewCFBEncrypter(block, c.sharedKey)
	return &cipher.StreamWriter{S: stream, W: w}
}
