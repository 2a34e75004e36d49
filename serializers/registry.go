package serializers

import (
	"fmt"
	"reflect"
	"time"

	"google.golang.org/protobuf/proto"
)

// GetSerializer picks the first matching serializer for T, in the same
// dispatch order the framework documents: protobuf message, raw bytes,
// ISO-8601 date/time, then JSON for everything else (typed structs, plain
// records, and JSON primitives alike).
func GetSerializer[T any]() Serializer[T] {
	var zero T

	if _, ok := any(zero).(proto.Message); ok {
		return newProtoSerializer[T]()
	}
	if _, ok := any(zero).([]byte); ok {
		return any(bytesSerializer{}).(Serializer[T])
	}
	switch any(zero).(type) {
	case time.Time:
		return any(timeSerializer{}).(Serializer[T])
	}
	return jsonSerializer[T]{}
}

// reflectProtoSerializer adapts proto.Marshal/Unmarshal to Serializer[T] for
// a generic T known only at runtime to implement proto.Message (T is
// typically a pointer to a generated message type).
type reflectProtoSerializer[T any] struct {
	elemType reflect.Type
}

func newProtoSerializer[T any]() Serializer[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("serializers: proto.Message type %T must be a pointer", zero))
	}
	return reflectProtoSerializer[T]{elemType: t.Elem()}
}

func (s reflectProtoSerializer[T]) Encode(message T) ([]byte, error) {
	pm, ok := any(message).(proto.Message)
	if !ok {
		return nil, fmt.Errorf("serializers: %T does not implement proto.Message", message)
	}
	return proto.Marshal(pm)
}

func (s reflectProtoSerializer[T]) Decode(data []byte) (T, error) {
	var zero T
	v := reflect.New(s.elemType)
	pm, ok := v.Interface().(proto.Message)
	if !ok {
		return zero, fmt.Errorf("serializers: %s does not implement proto.Message", s.elemType)
	}
	if err := proto.Unmarshal(data, pm); err != nil {
		return zero, err
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("serializers: cannot convert %s to target type", s.elemType)
	}
	return out, nil
}
