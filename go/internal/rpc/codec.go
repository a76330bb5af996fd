// Package rpc holds the connect plumbing shared by the room and pick services: a JSON codec for
// plain Go request/response structs and the mapping from draft failures to connect errors.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec replaces connect's protojson codec so handlers can exchange plain structs.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// WithJSON configures a handler or client to speak the JSON codec.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
