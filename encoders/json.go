package encoders

import (
	"encoding/json"
)

const jsonEncoderID = "json"

type JSON struct {
}

func (JSON) ID() string {
	return jsonEncoderID
}

func (JSON) ContentType() string {
	return "application/json"
}

func (JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Decode(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}
