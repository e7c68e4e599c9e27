package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	assert.Equal(t, `{"name":"statsd"}`, string(ToJSON(payload{Name: "statsd"})))
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})

	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Empty(t, SortedKeys(map[string]int{}))
}

func TestHostname(t *testing.T) {
	name := Hostname("unknown")

	assert.NotEmpty(t, name)
	assert.NotContains(t, name, ".")
	assert.Regexp(t, `^[A-Za-z0-9_-]+$`, name)
}
