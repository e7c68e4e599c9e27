package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	maxValueLength = 100
)

var newlineEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

type compactValue[T string | []byte] struct {
	val T
}

func (c *compactValue[T]) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// String escapes line breaks (raw statsd chunks are multi-line) and truncates the result
func (c *compactValue[T]) String() string {
	val := newlineEscaper.Replace(string(c.val))

	if len(val) > maxValueLength {
		return fmt.Sprintf("%s...(%d)", val[:maxValueLength], len(val)-maxValueLength)
	}

	return val
}

// CompactValue wraps a raw payload to show it in log escaped and truncated
func CompactValue[T string | []byte](v T) *compactValue[T] {
	return &compactValue[T]{val: v}
}
