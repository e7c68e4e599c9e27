package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTTY returns true if program is running with TTY
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func ToJSON[T any](val T) []byte {
	jsonStr, err := json.Marshal(&val)
	if err != nil {
		panic(fmt.Sprintf("😲 Failed to build JSON for %v: %v", val, err))
	}
	return jsonStr
}

// SortedKeys returns map keys in lexical order
func SortedKeys[T any](val map[string]T) []string {
	res := make([]string, 0, len(val))

	for k := range val {
		res = append(res, k)
	}

	sort.Strings(res)

	return res
}

var nonPathChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Hostname returns the short host name usable as a metric path segment
// ("web-1.example.com" -> "web-1"), or fallback if it cannot be resolved.
func Hostname(fallback string) string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return fallback
	}

	name, _, _ = strings.Cut(name, ".")
	name = nonPathChars.ReplaceAllString(name, "_")

	if name == "" {
		return fallback
	}

	return name
}
