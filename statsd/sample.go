// Package statsd implements parsing of the statsd line protocol:
//
//	<name>:<value>|<type>[@<sample rate>]
//	<name>:<value>|<type>|@<sample rate>
//
// Supported types are g (gauge), c and m (counter), ms and h (timer).
package statsd

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind is a type of the aggregate a sample is folded into
type Kind int

const (
	Gauge Kind = iota
	Counter
	Timer
)

func (k Kind) String() string {
	switch k {
	case Gauge:
		return "gauge"
	case Counter:
		return "counter"
	case Timer:
		return "timer"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Sample is a single parsed metric line
type Sample struct {
	Name  string
	Value float64
	Kind  Kind
	// SampleRate is only meaningful for counters; it is always in (0, 1]
	SampleRate float64
}

// String returns the sample in the wire format
func (s Sample) String() string {
	value := strconv.FormatFloat(s.Value, 'f', -1, 64)

	switch s.Kind {
	case Gauge:
		return s.Name + ":" + value + "|g"
	case Timer:
		return s.Name + ":" + value + "|ms"
	}

	if s.SampleRate > 0 && s.SampleRate < 1 {
		return s.Name + ":" + value + "|c|@" + strconv.FormatFloat(s.SampleRate, 'f', -1, 64)
	}

	return s.Name + ":" + value + "|c"
}

var validPath = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidPath returns true if the name (or a fully qualified path) contains only
// letters, digits, dots, underscores and dashes
func ValidPath(path string) bool {
	return validPath.MatchString(path)
}
