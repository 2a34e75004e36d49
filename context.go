package walnats

import "time"

// Context is passed to middleware hooks. Message is the decoded payload, or
// nil if decoding failed. That is only possible in OnFailure: a decode
// failure is treated like a handler failure, and OnStart is not called for
// that delivery — see ErrorContext.
type Context struct {
	ActorName string
	EventName string
	Message   any

	// Seq is the broker-assigned stream sequence number of the message.
	Seq uint64
	// NumDelivered is how many times the broker has attempted to deliver
	// this message, including the current attempt (broker-reported,
	// 1-indexed).
	NumDelivered uint64
	// Timestamp is the broker-reported arrival time of the message.
	Timestamp time.Time
	// TraceID is the value of the Walnats-Trace header, if present.
	TraceID string

	// delayed records whether the message carries a Walnats-Delay header;
	// Attempts counts that as exactly one delay-nak trip to subtract.
	delayed bool
}

// IsFirstAttempt reports whether this is the first attempt to handle the
// message.
func (c Context) IsFirstAttempt() bool {
	return c.NumDelivered <= 1
}

// Attempts is the broker's delivery count for this message, adjusted so a
// delay-nak trip (the runtime naking the message with Walnats-Delay still
// in the future, before the handler ever ran) isn't counted as a
// user-visible attempt: when the Walnats-Delay header is present and
// NumDelivered is at least 2, the count is decremented by exactly one. See
// the Open Question in the design notes this resolves.
func (c Context) Attempts() uint64 {
	n := c.NumDelivered
	if c.delayed && n >= 2 {
		n--
	}
	return n
}


// ErrorContext is passed to Middleware.OnFailure.
type ErrorContext struct {
	Context
	Err error
}

// OkContext is passed to Middleware.OnSuccess.
type OkContext struct {
	Context
	Duration time.Duration
}

// Middleware hooks are triggered at different stages of message handling.
// Hooks must not affect flow control: they have no error result, and the
// runtime neither logs nor recovers a panic raised inside a hook. A hook
// may do its work
// synchronously before returning, or return a non-nil func to be run
// fire-and-forget, tracked by the actor's task supervisor — mirroring the
// "void | deferred" hook contract.
type Middleware interface {
	OnStart(ctx Context) func()
	OnFailure(ctx ErrorContext) func()
	OnSuccess(ctx OkContext) func()
}

// BaseMiddleware is embedded by middleware implementations that only need
// to override one or two of the three hooks.
type BaseMiddleware struct{}

func (BaseMiddleware) OnStart(Context) func()       { return nil }
func (BaseMiddleware) OnFailure(ErrorContext) func() { return nil }
func (BaseMiddleware) OnSuccess(OkContext) func()    { return nil }
