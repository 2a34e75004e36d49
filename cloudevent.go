package walnats

import (
	"fmt"
	"time"
)

// CloudEvent is event metadata following the CloudEvents v1.0 spec
// (https://github.com/cloudevents/spec/blob/v1.0/spec.md). Passed to EmitT
// or RequestT via WithCloudEventMeta, it is projected onto
// `ce-*` NATS headers per the CloudEvents NATS protocol binding (still a
// work in progress upstream, hence the light-touch mapping here).
type CloudEvent struct {
	// required
	ID          string
	Source      string
	Type        string
	SpecVersion string // defaults to "1.0" if empty

	// optional
	DataContentType string
	DataSchema      string
	Subject         string
	Time            *time.Time

	// extensions
	DataRef      string
	PartitionKey string
	SampledRate  *int
	Sequence     string
	TraceParent  string
	TraceState   string
}

// AsHeaders produces NATS-compatible headers from the event metadata.
func (c CloudEvent) AsHeaders() map[string]string {
	h := map[string]string{}
	specVersion := c.SpecVersion
	if specVersion == "" {
		specVersion = "1.0"
	}
	set := func(key, value string) {
		if value != "" {
			h["ce-"+key] = value
		}
	}
	set("id", c.ID)
	set("source", c.Source)
	set("type", c.Type)
	set("specversion", specVersion)
	set("datacontenttype", c.DataContentType)
	set("dataschema", c.DataSchema)
	set("subject", c.Subject)
	if c.Time != nil {
		h["ce-time"] = c.Time.UTC().Format("2006-01-02T15:04:05.999999999") + "Z"
	}
	set("dataref", c.DataRef)
	set("partitionkey", c.PartitionKey)
	if c.SampledRate != nil {
		h["ce-sampledrate"] = fmt.Sprintf("%d", *c.SampledRate)
	}
	set("sequence", c.Sequence)
	set("traceparent", c.TraceParent)
	set("tracestate", c.TraceState)
	return h
}
