package walnats

import (
	"fmt"
	"regexp"
	"strings"
)

// invalidNameChars matches any of the characters reserved by NATS subjects
// or disallowed by walnats' own naming convention: `.`, `*`, `>`, whitespace.
var invalidNameChars = regexp.MustCompile(`[.*> \t\r\n\f]`)

// validateName enforces the shared lexical rule for Event and Actor names:
// 1-64 characters, no NATS wildcard/subject-separator characters or
// whitespace. It panics on violation, consistent with this package treating
// a bad name as a programmer error caught at startup, not a runtime
// condition callers are expected to recover from.
func validateName(kind, name string) {
	if len(name) == 0 || len(name) > 64 {
		panic(fmt.Sprintf("walnats: invalid %s name %q: must be 1-64 characters", kind, name))
	}
	if invalidNameChars.MatchString(name) {
		panic(fmt.Sprintf("walnats: invalid %s name %q: must not contain '.', '*', '>', or whitespace", kind, name))
	}
}

// streamNameFor derives a JetStream stream name from an event name by
// replacing '.' with '-'. NATS subjects use '.' as a hierarchy separator,
// which JetStream stream names must not contain; the subject name itself is
// left unchanged so routing is unaffected.
func streamNameFor(name string) string {
	return strings.ReplaceAll(name, ".", "-")
}
