package statsd

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/joomcode/errorx"
)

var (
	Errors = errorx.NewNamespace("statsd").ApplyModifiers(errorx.TypeModifierOmitStackTrace)

	// ErrMalformed is returned for lines which cannot be split, have an unknown type or a bad value
	ErrMalformed = Errors.NewType("malformed_line")
	// ErrInvalidName is returned for metric names with characters outside of [A-Za-z0-9._-]
	ErrInvalidName = Errors.NewType("invalid_name")
)

// ParseChunk splits raw data into lines and parses each of them.
// Blank lines are skipped; every bad line produces an error and is not included into samples.
func ParseChunk(data []byte) ([]Sample, []error) {
	var (
		samples []Sample
		errs    []error
	)

	for len(data) > 0 {
		var line []byte

		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		sample, err := ParseLine(string(line))

		if err != nil {
			errs = append(errs, err)
			continue
		}

		samples = append(samples, sample)
	}

	return samples, errs
}

// ParseLine parses a single metric line
func ParseLine(line string) (Sample, error) {
	line = strings.TrimRight(line, " \t\r\n")

	parts := strings.Split(line, "|")

	if len(parts) < 2 || len(parts) > 3 {
		return Sample{}, ErrMalformed.New("expected <name>:<value>|<type>, got %q", line)
	}

	name, rawValue, ok := strings.Cut(parts[0], ":")

	if !ok || name == "" || rawValue == "" {
		return Sample{}, ErrMalformed.New("expected <name>:<value>, got %q", line)
	}

	if !ValidPath(name) {
		return Sample{}, ErrInvalidName.New("invalid metric name %q", name)
	}

	tag, rawRate, hasRate := strings.Cut(parts[1], "@")

	if len(parts) == 3 {
		if hasRate || !strings.HasPrefix(parts[2], "@") {
			return Sample{}, ErrMalformed.New("unexpected segment %q in %q", parts[2], line)
		}

		rawRate, hasRate = parts[2][1:], true
	}

	switch {
	case tag == "g":
		value, err := parseFloat(rawValue)
		if err != nil {
			return Sample{}, ErrMalformed.New("invalid gauge value in %q", line)
		}

		return Sample{Name: name, Value: value, Kind: Gauge, SampleRate: 1}, nil
	case tag == "ms" || tag == "h":
		value, err := parseFloat(rawValue)
		if err != nil {
			return Sample{}, ErrMalformed.New("invalid timer value in %q", line)
		}

		return Sample{Name: name, Value: value, Kind: Timer, SampleRate: 1}, nil
	case strings.HasPrefix(tag, "c") || tag == "m":
		value, err := strconv.ParseInt(rawValue, 10, 64)
		if err != nil {
			return Sample{}, ErrMalformed.New("invalid counter value in %q", line)
		}

		rate := 1.0

		if hasRate {
			rate, err = parseFloat(rawRate)
			if err != nil || rate <= 0 || rate > 1 {
				return Sample{}, ErrMalformed.New("invalid sample rate in %q", line)
			}
		}

		return Sample{Name: name, Value: float64(value), Kind: Counter, SampleRate: rate}, nil
	}

	return Sample{}, ErrMalformed.New("unknown metric type %q in %q", tag, line)
}

func parseFloat(raw string) (float64, error) {
	val, err := strconv.ParseFloat(raw, 64)

	if err != nil {
		return 0, err
	}

	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, strconv.ErrSyntax
	}

	return val, nil
}
