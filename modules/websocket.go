package modules

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

var (
	wsConns        = map[int64]*websocket.Conn{}
	wsNextID int64 = 1
	wsMutex  sync.Mutex
)

func nextWsID() int64 {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	id := wsNextID
	wsNextID++
	return id
}

func wsConn(id int64) (*websocket.Conn, bool) {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	c, ok := wsConns[id]
	return c, ok
}

// WebSocket exposes connection handles as opaque ints, the same shape the
// db and socket modules use.
func WebSocket() Module {
	return Module{
		"connect": native("connect", wsConnect),
		"send":    native("send", wsSend),
		"recv":    native("recv", wsRecv),
		"close":   native("close", wsClose),
	}
}

func wsConnect(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("connect", args, 1, 1); err != nil {
		return nil, err
	}
	url, err := unpackString("connect", "url", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckWS(ctx, url); perr != nil {
		return nil, perr
	}

	conn, _, derr := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if derr != nil {
		if ctx.Err() != nil {
			return nil, value.Errorf(value.Cancelled, "connect cancelled")
		}
		return nil, value.Errorf(value.IOError, "connect() failed: %s", derr)
	}

	id := nextWsID()
	wsMutex.Lock()
	wsConns[id] = conn
	wsMutex.Unlock()
	return &value.Int{Value: id}, nil
}

func wsSend(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("send", args, 2, 2); err != nil {
		return nil, err
	}
	id, err := unpackInt("send", "handle", args[0])
	if err != nil {
		return nil, err
	}
	msg, err := unpackString("send", "message", args[1])
	if err != nil {
		return nil, err
	}
	conn, ok := wsConn(id)
	if !ok {
		return nil, value.Errorf(value.ValueError, "send(): unknown websocket handle %d", id)
	}
	if werr := conn.WriteMessage(websocket.TextMessage, []byte(msg)); werr != nil {
		return nil, value.Errorf(value.IOError, "send() failed: %s", werr)
	}
	return value.NONE, nil
}

func wsRecv(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("recv", args, 1, 1); err != nil {
		return nil, err
	}
	id, err := unpackInt("recv", "handle", args[0])
	if err != nil {
		return nil, err
	}
	conn, ok := wsConn(id)
	if !ok {
		return nil, value.Errorf(value.ValueError, "recv(): unknown websocket handle %d", id)
	}
	_, data, rerr := conn.ReadMessage()
	if rerr != nil {
		return nil, value.Errorf(value.IOError, "recv() failed: %s", rerr)
	}
	return &value.String{Value: string(data)}, nil
}

func wsClose(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("close", args, 1, 1); err != nil {
		return nil, err
	}
	id, err := unpackInt("close", "handle", args[0])
	if err != nil {
		return nil, err
	}
	wsMutex.Lock()
	conn, ok := wsConns[id]
	delete(wsConns, id)
	wsMutex.Unlock()
	if !ok {
		return nil, value.Errorf(value.ValueError, "close(): unknown websocket handle %d", id)
	}
	conn.Close()
	return value.NONE, nil
}
