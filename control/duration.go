// File: control/duration.go
// YAML-friendly duration type accepting "250ms" style strings as well as
// bare nanosecond integers.
// License: Apache-2.0

package control

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML decoding.
type Duration time.Duration

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML accepts either a duration string ("1s", "250ms") or an
// integer nanosecond count.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	// Try the integer form first: an int node also decodes as a string,
	// but never the other way around.
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("bad duration node: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
