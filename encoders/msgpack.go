package encoders

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

const msgpackEncoderID = "msgpack"

// Msgpack uses json struct tags, so both encodings share field names
type Msgpack struct {
}

func (Msgpack) ID() string {
	return msgpackEncoderID
}

func (Msgpack) ContentType() string {
	return "application/msgpack"
}

func (Msgpack) Encode(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := msgpack.NewEncoder(&b)
	enc.SetCustomStructTag("json")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func (Msgpack) Decode(raw []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.SetCustomStructTag("json")

	return dec.Decode(v)
}
