package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// sealedMagic prefixes every sealed payload so plain files written before a
// key was configured can still be read.
var sealedMagic = []byte("PDS1")

var ErrSealed = errors.New("payload is sealed and no key is configured")

// Sealer encrypts documents at rest with AES-256-GCM. The document name is
// bound as additional data, so a sealed file cannot be swapped for another.
type Sealer struct {
	aead cipher.AEAD
}

// New returns a Sealer for a 32 byte key given as hex, base64 or raw text.
// An empty key yields a pass-through Sealer.
func New(key string) (*Sealer, error) {
	if key == "" {
		return &Sealer{}, nil
	}
	decoded := decodeKey(key)
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

func (s *Sealer) Configured() bool {
	return s.aead != nil
}

func (s *Sealer) Seal(name string, plain []byte) ([]byte, error) {
	if !s.Configured() {
		return plain, nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(sealedMagic)+len(nonce)+len(plain)+s.aead.Overhead())
	out = append(out, sealedMagic...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plain, []byte(name)), nil
}

func (s *Sealer) Open(name string, sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, sealedMagic) {
		return sealed, nil
	}
	if !s.Configured() {
		return nil, ErrSealed
	}
	body := sealed[len(sealedMagic):]
	if len(body) < s.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, data := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	return s.aead.Open(nil, nonce, data, []byte(name))
}

func decodeKey(raw string) []byte {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(raw); err == nil && len(decoded) == 32 {
			return decoded
		}
	}
	return []byte(raw)
}
