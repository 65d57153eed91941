// Package viewer defines the contract of the hosted 3D viewer this
// configurator drives, plus a websocket client binding of that contract.
//
// # Contract
//
// The Viewer interface is the only surface the rest of the application sees.
// Init must resolve before any other call. All mutations are asynchronous on
// the viewer side; new objects created by ImportFiles become visible through
// a subsequent Objects call, never through a return value.
//
// # Remote client
//
// Remote speaks a small JSON request/response protocol over a websocket to
// the viewer bridge embedded in the product page:
//
//	{"id": 7, "method": "importFiles", "params": {...}}
//	{"id": 7, "result": ...}  or  {"id": 7, "error": "..."}
//
// Calls are correlated by id, so responses may arrive out of order. File
// payloads travel base64-encoded, which encoding/json does for []byte
// automatically.
package viewer
