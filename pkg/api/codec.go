// Package api defines the hisab.v1 wire contract: request and response
// messages, procedure names, handler constructors and typed clients.
//
// Messages are plain Go structs carried as JSON by Connect, so any HTTP
// client can call the API with
//
//	curl -H 'Content-Type: application/json' \
//	     -d '{"email":"a@b.c","password":"..."}' \
//	     http://localhost:8080/hisab.v1.AuthService/Login
package api

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec marshals messages with encoding/json. Connect's built-in JSON
// codec only accepts protobuf messages.
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string { return c.name }

func (c jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

// handlerOptions registers the JSON codec under both names Connect
// negotiates for application/json.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: "json"}),
		connect.WithCodec(jsonCodec{name: "json; charset=utf-8"}),
	}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{
		connect.WithCodec(jsonCodec{name: "json"}),
	}, opts...)
}
