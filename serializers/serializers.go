package serializers

import (
	"encoding/json"
	"time"
)

// jsonSerializer serializes any JSON-marshalable Go value. It is the
// catch-all default: a typed struct, a map, or a JSON primitive (string,
// number, bool, slice, nil) all go through it.
type jsonSerializer[M any] struct{}

func (jsonSerializer[M]) Encode(message M) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonSerializer[M]) Decode(data []byte) (M, error) {
	var m M
	err := json.Unmarshal(data, &m)
	return m, err
}

// bytesSerializer passes raw bytes through unchanged, for schemas already
// serialized by the caller.
type bytesSerializer struct{}

func (bytesSerializer) Encode(message []byte) ([]byte, error) { return message, nil }
func (bytesSerializer) Decode(data []byte) ([]byte, error)    { return data, nil }

// timeSerializer encodes time.Time as an RFC 3339 / ISO-8601 string.
type timeSerializer struct{}

func (timeSerializer) Encode(message time.Time) ([]byte, error) {
	return []byte(message.UTC().Format(time.RFC3339Nano)), nil
}

func (timeSerializer) Decode(data []byte) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, string(data))
}

