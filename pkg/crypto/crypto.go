// Package crypto seals small secrets (API credentials at rest in the state
// file) using encrypt-then-MAC via cryptopasta.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

const minPassphrase = 16

// NewRandomKey generates a random passphrase suitable for sealing.
func NewRandomKey() (string, error) {
	key := &[33]byte{} // slightly longer than we need to be safe
	_, err := io.ReadFull(rand.Reader, key[:])
	return base64.RawURLEncoding.EncodeToString(key[:]), err
}

// Seal encrypts plaintext and attaches an HMAC signature, both keyed off the
// passphrase. The result is a printable "cipher.signature" string.
func Seal(plaintext []byte, passphrase string) (string, error) {
	enckey, sigkey, err := deriveKeys(passphrase)
	if err != nil {
		return "", err
	}

	cipher, err := cryptopasta.Encrypt(plaintext, enckey)
	if err != nil {
		return "", err
	}

	signature := cryptopasta.GenerateHMAC(cipher, sigkey)

	return fmt.Sprintf(
		"%s.%s",
		base64.RawURLEncoding.EncodeToString(cipher),
		base64.RawURLEncoding.EncodeToString(signature),
	), nil
}

// Open is the inverse of Seal: it checks the HMAC and decrypts, failing on
// any tampering or a wrong passphrase.
func Open(sealed, passphrase string) ([]byte, error) {
	enckey, sigkey, err := deriveKeys(passphrase)
	if err != nil {
		return nil, err
	}

	bits := strings.SplitN(sealed, ".", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("sealed string invalid")
	}

	cipher, err := base64.RawURLEncoding.DecodeString(bits[0])
	if err != nil {
		return nil, err
	}

	signature, err := base64.RawURLEncoding.DecodeString(bits[1])
	if err != nil {
		return nil, err
	}

	if !cryptopasta.CheckHMAC(cipher, signature, sigkey) {
		return nil, fmt.Errorf("signature validation failed")
	}

	return cryptopasta.Decrypt(cipher, enckey)
}

// deriveKeys stretches one passphrase into the distinct encryption and
// signing keys cryptopasta wants.
func deriveKeys(passphrase string) (*[32]byte, *[32]byte, error) {
	if len(passphrase) < minPassphrase {
		return nil, nil, fmt.Errorf("passphrase too short, want at least %d chars", minPassphrase)
	}

	enc := sha256.Sum256([]byte("enc." + passphrase))
	sig := sha256.Sum256([]byte("sig." + passphrase))
	return &enc, &sig, nil
}
