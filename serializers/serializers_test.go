package serializers

import (
	"testing"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestJSONSerializerRoundTrip(t *testing.T) {
	s := GetSerializer[user]()
	data, err := s.Encode(user{Name: "ada", Age: 30})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Name != "ada" || got.Age != 30 {
		t.Errorf("Decode() = %+v, want {ada 30}", got)
	}
}

func TestBytesSerializerPassthrough(t *testing.T) {
	s := GetSerializer[[]byte]()
	data, err := s.Encode([]byte("raw"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(data) != "raw" {
		t.Errorf("Encode() = %q, want %q", data, "raw")
	}
}

func TestTimeSerializerRoundTrip(t *testing.T) {
	s := GetSerializer[time.Time]()
	now := time.Now().UTC().Truncate(time.Millisecond)
	data, err := s.Encode(now)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("Decode() = %v, want %v", got, now)
	}
}

func TestGZipWrapperRoundTrip(t *testing.T) {
	s := GZip[user](jsonSerializer[user]{}, 0)
	msg := user{Name: "grace", Age: 85}
	data, err := s.Encode(msg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != msg {
		t.Errorf("Decode() = %+v, want %+v", got, msg)
	}
}

func TestHMACWrapperDetectsTampering(t *testing.T) {
	s := HMAC[user](jsonSerializer[user]{}, []byte("secret-key"))
	data, err := s.Encode(user{Name: "linus", Age: 54})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := s.Decode(data); err != nil {
		t.Fatalf("Decode() of untampered message error = %v", err)
	}
	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := s.Decode(tampered); err == nil {
		t.Error("Decode() of tampered message succeeded, want error")
	}
}

func TestAEADWrapperRoundTrip(t *testing.T) {
	key := make([]byte, chacha20poly1305.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	base := jsonSerializer[user]{}
	s, err := AEAD[user](base, key)
	if err != nil {
		t.Fatalf("AEAD() error = %v", err)
	}
	msg := user{Name: "katherine", Age: 40}
	data, err := s.Encode(msg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != msg {
		t.Errorf("Decode() = %+v, want %+v", got, msg)
	}

	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := s.Decode(tampered); err == nil {
		t.Error("Decode() of tampered ciphertext succeeded, want error")
	}
}
