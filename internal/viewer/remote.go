package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
)

type rpcRequest struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Remote is a Viewer backed by a websocket connection to the viewer bridge.
//
// Example usage:
//
//	v, err := viewer.Dial(ctx, "ws://localhost:9000/viewer")
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//
//	if err := v.Init(ctx); err != nil {
//	    return err
//	}
//	roots, err := v.Objects(ctx)
type Remote struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan rpcResponse
	readErr error
	closed  bool
}

var _ Viewer = (*Remote)(nil)

// Dial connects to the viewer bridge at url and starts the response reader.
func Dial(ctx context.Context, url string) (*Remote, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial viewer %s: %w", url, err)
	}

	r := &Remote{
		conn:    conn,
		pending: make(map[uint64]chan rpcResponse),
	}
	go r.readLoop()
	return r, nil
}

// Close tears down the connection. In-flight calls fail with the close error.
func (r *Remote) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.conn.Close()
}

func (r *Remote) readLoop() {
	for {
		var resp rpcResponse
		if err := r.conn.ReadJSON(&resp); err != nil {
			r.failAll(err)
			return
		}

		r.mu.Lock()
		ch, ok := r.pending[resp.ID]
		if ok {
			delete(r.pending, resp.ID)
		}
		r.mu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

func (r *Remote) failAll(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		err = fmt.Errorf("viewer connection closed")
	}
	r.readErr = err
	for id, ch := range r.pending {
		delete(r.pending, id)
		close(ch)
	}
}

// call sends one request and decodes the correlated response into out.
func (r *Remote) call(ctx context.Context, method string, params, out any) error {
	id := r.nextID.Add(1)
	ch := make(chan rpcResponse, 1)

	r.mu.Lock()
	if r.readErr != nil {
		err := r.readErr
		r.mu.Unlock()
		return fmt.Errorf("viewer %s: %w", method, err)
	}
	r.pending[id] = ch
	r.mu.Unlock()

	r.writeMu.Lock()
	err := r.conn.WriteJSON(rpcRequest{ID: id, Method: method, Params: params})
	r.writeMu.Unlock()
	if err != nil {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
		return fmt.Errorf("viewer %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			r.mu.Lock()
			err := r.readErr
			r.mu.Unlock()
			return fmt.Errorf("viewer %s: %w", method, err)
		}
		if resp.Error != "" {
			return fmt.Errorf("viewer %s: %s", method, resp.Error)
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("viewer %s: decode result: %w", method, err)
			}
		}
		return nil
	}
}

// Init implements Viewer.
func (r *Remote) Init(ctx context.Context) error {
	return r.call(ctx, "init", nil, nil)
}

// Objects implements Viewer.
func (r *Remote) Objects(ctx context.Context) ([]*scene.Object, error) {
	var roots []*scene.Object
	if err := r.call(ctx, "getObjects", nil, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

type importParams struct {
	FileName string     `json:"fileName"`
	Data     []byte     `json:"data"`
	Mode     ImportMode `json:"mode"`
}

// ImportFiles implements Viewer.
func (r *Remote) ImportFiles(ctx context.Context, filename string, data []byte, mode ImportMode) error {
	return r.call(ctx, "importFiles", importParams{FileName: filename, Data: data, Mode: mode}, nil)
}

type visibilityParams struct {
	IDs     []string `json:"ids"`
	Visible bool     `json:"visible"`
}

// ToggleVisibility implements Viewer.
func (r *Remote) ToggleVisibility(ctx context.Context, ids []string, visible bool) error {
	return r.call(ctx, "toggleVisibility", visibilityParams{IDs: ids, Visible: visible}, nil)
}

type materialParams struct {
	ObjectID string         `json:"objectId"`
	Material scene.Material `json:"material"`
}

// AddOrEditMaterial implements Viewer.
func (r *Remote) AddOrEditMaterial(ctx context.Context, objectID string, mat scene.Material) error {
	return r.call(ctx, "addOrEditMaterial", materialParams{ObjectID: objectID, Material: mat}, nil)
}

// ConfigurationState implements Viewer.
func (r *Remote) ConfigurationState(ctx context.Context) ([]ConfigEntry, error) {
	var entries []ConfigEntry
	if err := r.call(ctx, "getConfigurationState", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SetConfigurationState implements Viewer.
func (r *Remote) SetConfigurationState(ctx context.Context, entries []ConfigEntry) error {
	return r.call(ctx, "setConfigurationState", entries, nil)
}
