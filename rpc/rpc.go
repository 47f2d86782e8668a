package rpc

import (
	"encoding/json"
)

// https://www.jsonrpc.org/specification#request_object
type RequestIn struct {
	JsonRpc string          `json:"jsonrpc"` // Must be "2.0"
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	Id      any             `json:"id"`
}
type RequestOut struct {
	JsonRpc string `json:"jsonrpc"` // Must be "2.0"
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	Id      any    `json:"id"`
}

// https://www.jsonrpc.org/specification#response_object
type ResponseIn struct {
	JsonRpc string          `json:"jsonrpc"` // Must be "2.0"
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	Id      any             `json:"id"`
}
type ResponseOut struct {
	JsonRpc string `json:"jsonrpc"` // Must be "2.0"
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	Id      any    `json:"id"`
}

// https://www.jsonrpc.org/specification#error_object
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
