package walnats

import "time"

// Limits bound the size of the JetStream stream backing an Event. When any
// limit is reached, NATS drops old messages to fit within it. Each field is
// either positive or absent (nil).
type Limits struct {
	// Age is the maximum age of any message in the stream.
	Age *time.Duration
	// Consumers is how many durable consumers may be defined for the stream.
	Consumers *int64
	// Messages is how many messages may be in the stream.
	Messages *int64
	// Bytes is how many bytes the stream may contain.
	Bytes *int64
	// MessageSize is the largest single message the stream will accept.
	MessageSize *int64
}

// Evolve returns a copy of Limits with fields from patch overlaid; a nil
// field in patch leaves the receiver's value untouched.
func (l Limits) Evolve(patch Limits) Limits {
	out := l
	if patch.Age != nil {
		out.Age = patch.Age
	}
	if patch.Consumers != nil {
		out.Consumers = patch.Consumers
	}
	if patch.Messages != nil {
		out.Messages = patch.Messages
	}
	if patch.Bytes != nil {
		out.Bytes = patch.Bytes
	}
	if patch.MessageSize != nil {
		out.MessageSize = patch.MessageSize
	}
	return out
}

func durationPtr(d time.Duration) *time.Duration { return &d }
func int64Ptr(i int64) *int64                     { return &i }
