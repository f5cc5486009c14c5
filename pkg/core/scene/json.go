package scene

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/scenedsl/pkg/errors"
)

// MarshalJSON encodes s in the design tool's wire shape with RGB colors.
func (s Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(s, ColorRGB))
}

// UnmarshalJSON decodes a lone node or a sequence of nodes.
func (s *Scene) UnmarshalJSON(data []byte) error {
	v, err := decodeJSON(data)
	if err != nil {
		return err
	}
	decoded, err := Decode(v)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// MarshalJSON encodes n as a {name, type, node} object with RGB colors.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeNode(n, ColorRGB))
}

// UnmarshalJSON decodes a single {name, type, node} object.
func (n *Node) UnmarshalJSON(data []byte) error {
	v, err := decodeJSON(data)
	if err != nil {
		return err
	}
	decoded, err := DecodeNode(v)
	if err != nil {
		return err
	}
	*n = decoded
	return nil
}

func decodeJSON(data []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSceneShape, err, "decode scene JSON")
	}
	return v, nil
}
