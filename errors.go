package walnats

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// JetStream API error codes this package translates into its own error
// types. See https://docs.nats.io/nats-concepts/jetstream for the codes.
const (
	errCodeStreamExists   = 10058
	errCodeStreamConfig   = 10052
	errCodeConsumerExists = 10013
)

// StreamExistsError is returned by ConnectedEvents.Register when a stream
// name is already in use with a different configuration.
//
// Common causes: two registered events share a name, or the event's
// configuration changed and Register was called with update=false.
type StreamExistsError struct {
	Stream string
	Err    error
}

func (e *StreamExistsError) Error() string {
	return fmt.Sprintf("stream %q already exists with a different configuration: %v", e.Stream, e.Err)
}

func (e *StreamExistsError) Unwrap() error { return e.Err }

// StreamConfigError is returned when a stream's configuration cannot be
// updated: either an invalid value was given, or an immutable option
// (such as retention policy) was changed.
type StreamConfigError struct {
	Stream string
	Err    error
}

func (e *StreamConfigError) Error() string {
	return fmt.Sprintf("stream %q configuration rejected: %v", e.Stream, e.Err)
}

func (e *StreamConfigError) Unwrap() error { return e.Err }

// ConsumerExistsError is returned by ConnectedActors.Register when a
// durable consumer name is already in use with a different configuration.
type ConsumerExistsError struct {
	Stream   string
	Consumer string
	Err      error
}

func (e *ConsumerExistsError) Error() string {
	return fmt.Sprintf("consumer %q on stream %q already exists with a different configuration: %v", e.Consumer, e.Stream, e.Err)
}

func (e *ConsumerExistsError) Unwrap() error { return e.Err }

// convertStreamError maps a broker error encountered while creating or
// updating a stream into a framework-level error. existsOK mirrors
// register(create, update): when true, "already exists" is not an error.
func convertStreamError(stream string, existsOK bool, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode {
		case errCodeStreamExists:
			if existsOK {
				return nil
			}
			return &StreamExistsError{Stream: stream, Err: err}
		case errCodeStreamConfig:
			return &StreamConfigError{Stream: stream, Err: err}
		}
	}
	return err
}

// convertConsumerError maps a broker error encountered while creating a
// durable consumer into a framework-level error.
func convertConsumerError(stream, consumer string, existsOK bool, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode == errCodeConsumerExists {
			if existsOK {
				return nil
			}
			return &ConsumerExistsError{Stream: stream, Consumer: consumer, Err: err}
		}
	}
	return err
}
