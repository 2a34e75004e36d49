package serializers

import (
	"bytes"
	"compress/gzip"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// GZip compresses the output of serializer using gzip at the given level
// (gzip.DefaultCompression if level is 0).
func GZip[M any](serializer Serializer[M], level int) Serializer[M] {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return &gzipSerializer[M]{serializer: serializer, level: level}
}

type gzipSerializer[M any] struct {
	serializer Serializer[M]
	level      int
}

func (g *gzipSerializer[M]) Encode(message M) ([]byte, error) {
	data, err := g.serializer.Encode(message)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *gzipSerializer[M]) Decode(data []byte) (M, error) {
	var zero M
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return zero, err
	}
	defer r.Close()
	plain, err := io.ReadAll(r)
	if err != nil {
		return zero, err
	}
	return g.serializer.Decode(plain)
}

// HMAC signs the output of serializer with the given key, prepending the
// binary digest. Decode verifies the digest in constant time and fails with
// an error if the message is corrupted or altered.
func HMAC[M any](serializer Serializer[M], key []byte) Serializer[M] {
	return &hmacSerializer[M]{serializer: serializer, key: key, newHash: sha512.New}
}

// HMACWithHash is HMAC with an explicit digest constructor, e.g. sha256.New.
func HMACWithHash[M any](serializer Serializer[M], key []byte, newHash func() hash.Hash) Serializer[M] {
	return &hmacSerializer[M]{serializer: serializer, key: key, newHash: newHash}
}

type hmacSerializer[M any] struct {
	serializer Serializer[M]
	key        []byte
	newHash    func() hash.Hash
}

func (h *hmacSerializer[M]) Encode(message M) ([]byte, error) {
	data, err := h.serializer.Encode(message)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(h.newHash, h.key)
	mac.Write(data)
	digest := mac.Sum(nil)
	return append(digest, data...), nil
}

func (h *hmacSerializer[M]) Decode(data []byte) (M, error) {
	var zero M
	size := hmac.New(h.newHash, h.key).Size()
	if len(data) < size {
		return zero, fmt.Errorf("serializers: the message is corrupted or altered")
	}
	actualDigest, payload := data[:size], data[size:]
	mac := hmac.New(h.newHash, h.key)
	mac.Write(payload)
	expectedDigest := mac.Sum(nil)
	if !hmac.Equal(actualDigest, expectedDigest) {
		return zero, fmt.Errorf("serializers: the message is corrupted or altered")
	}
	return h.serializer.Decode(payload)
}

// AEAD encrypts and authenticates the output of serializer with
// ChaCha20-Poly1305, the idiomatic Go analogue of Fernet-style authenticated
// encryption: a single key both encrypts and authenticates, and decryption
// fails closed on any tampering. key must be chacha20poly1305.KeySize bytes.
func AEAD[M any](serializer Serializer[M], key []byte) (Serializer[M], error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &aeadSerializer[M]{serializer: serializer, aead: aead}, nil
}

type aeadSerializer[M any] struct {
	serializer Serializer[M]
	aead       interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

func (a *aeadSerializer[M]) Encode(message M) ([]byte, error) {
	data, err := a.serializer.Encode(message)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return a.aead.Seal(nonce, nonce, data, nil), nil
}

func (a *aeadSerializer[M]) Decode(data []byte) (M, error) {
	var zero M
	nonceSize := a.aead.NonceSize()
	if len(data) < nonceSize {
		return zero, fmt.Errorf("serializers: ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := a.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return zero, err
	}
	return a.serializer.Decode(plain)
}
