// Package serializers converts typed Go values to and from the bytes
// carried in a NATS message payload, and provides wrappers (compression,
// signing, encryption) that compose around a base serializer.
package serializers

// Serializer turns an M into bytes for publishing, and back.
type Serializer[M any] interface {
	Encode(message M) ([]byte, error)
	Decode(data []byte) (M, error)
}
