package walnats

import (
	"fmt"
	"sort"
	"strings"
)

// Service groups the events a microservice emits and the actors it runs,
// purely for documentation and diagramming — it has no runtime behavior of
// its own and is never connected to NATS directly.
type Service struct {
	Name   string
	Emits  []eventDescriptor
	Listens []actorBinding
}

// Services is a named collection of Service descriptions, used to render a
// system-wide dependency diagram.
type Services []Service

// D2 renders the services as a D2 (https://d2lang.com) diagram: one shape
// per service and per event, with edges for emit and listen relationships.
// direction is passed through as the diagram's top-level "direction"
// attribute (e.g. "right", "down"); empty means D2's own default.
func (s Services) D2(direction string) string {
	var b strings.Builder
	if direction != "" {
		fmt.Fprintf(&b, "direction: %s\n", direction)
	}

	events := map[string]bool{}
	for _, svc := range s {
		fmt.Fprintf(&b, "%s: {shape: rectangle}\n", quoteD2(svc.Name))
		for _, ev := range svc.Emits {
			events[ev.Name()] = true
		}
		for _, a := range svc.Listens {
			events[a.EventName()] = true
		}
	}
	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: {shape: diamond}\n", quoteD2(name))
	}

	for _, svc := range s {
		for _, ev := range svc.Emits {
			fmt.Fprintf(&b, "%s -> %s\n", quoteD2(svc.Name), quoteD2(ev.Name()))
		}
		for _, a := range svc.Listens {
			fmt.Fprintf(&b, "%s -> %s\n", quoteD2(a.EventName()), quoteD2(svc.Name))
		}
	}
	return b.String()
}

func quoteD2(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
