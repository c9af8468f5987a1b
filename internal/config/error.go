package config

import (
	"fmt"
	"strings"
)

// Error collects everything wrong with one config file so it can be
// reported in a single pass.
type Error struct {
	Path    string
	Missing []string // ${VAR} references with no value
	Errors  []string // Validate results
}

func (e *Error) Error() string {
	var b strings.Builder
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("validation failed:")
		for _, msg := range e.Errors {
			b.WriteString("\n  - ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

// HasErrors reports whether anything was collected.
func (e *Error) HasErrors() bool {
	return len(e.Missing)+len(e.Errors) > 0
}
