// Package encoders serializes published envelopes
package encoders

import "github.com/joomcode/errorx"

type Encoder interface {
	ID() string
	ContentType() string
	Encode(v any) ([]byte, error)
	Decode(payload []byte, v any) error
}

var _ Encoder = (*JSON)(nil)
var _ Encoder = (*Msgpack)(nil)

// FromName returns an encoder by its ID
func FromName(name string) (Encoder, error) {
	switch name {
	case jsonEncoderID:
		return JSON{}, nil
	case msgpackEncoderID:
		return Msgpack{}, nil
	}

	return nil, errorx.IllegalArgument.New("unknown encoding: %s", name)
}
