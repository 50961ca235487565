package modules

import (
	"bufio"
	"context"
	"net"
	"sync"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

var (
	tcpConns         = map[int64]net.Conn{}
	tcpReaders       = map[int64]*bufio.Reader{}
	tcpNextID  int64 = 1
	tcpMutex   sync.Mutex
)

func nextTcpID() int64 {
	tcpMutex.Lock()
	defer tcpMutex.Unlock()
	id := tcpNextID
	tcpNextID++
	return id
}

// Socket is raw TCP under the net.ws capability; a socket is the same
// trust level as a websocket.
func Socket() Module {
	return Module{
		"tcp_connect": native("tcp_connect", tcpConnect),
		"send":        native("send", tcpSend),
		"recv":        native("recv", tcpRecv),
		"close":       native("close", tcpClose),
	}
}

func tcpConnect(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("tcp_connect", args, 1, 1); err != nil {
		return nil, err
	}
	addr, err := unpackString("tcp_connect", "address", args[0])
	if err != nil {
		return nil, err
	}
	if perr := perm.CheckWS(ctx, addr); perr != nil {
		return nil, perr
	}

	var dialer net.Dialer
	conn, derr := dialer.DialContext(ctx, "tcp", addr)
	if derr != nil {
		if ctx.Err() != nil {
			return nil, value.Errorf(value.Cancelled, "tcp_connect cancelled")
		}
		return nil, value.Errorf(value.IOError, "tcp_connect() failed: %s", derr)
	}

	id := nextTcpID()
	tcpMutex.Lock()
	tcpConns[id] = conn
	tcpReaders[id] = bufio.NewReader(conn)
	tcpMutex.Unlock()
	return &value.Int{Value: id}, nil
}

func tcpSend(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("send", args, 2, 2); err != nil {
		return nil, err
	}
	id, err := unpackInt("send", "handle", args[0])
	if err != nil {
		return nil, err
	}
	data, err := unpackString("send", "data", args[1])
	if err != nil {
		return nil, err
	}
	tcpMutex.Lock()
	conn, ok := tcpConns[id]
	tcpMutex.Unlock()
	if !ok {
		return nil, value.Errorf(value.ValueError, "send(): unknown socket handle %d", id)
	}
	n, werr := conn.Write([]byte(data))
	if werr != nil {
		return nil, value.Errorf(value.IOError, "send() failed: %s", werr)
	}
	return &value.Int{Value: int64(n)}, nil
}

// recv(handle) reads one newline-terminated line.
func tcpRecv(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("recv", args, 1, 1); err != nil {
		return nil, err
	}
	id, err := unpackInt("recv", "handle", args[0])
	if err != nil {
		return nil, err
	}
	tcpMutex.Lock()
	reader, ok := tcpReaders[id]
	tcpMutex.Unlock()
	if !ok {
		return nil, value.Errorf(value.ValueError, "recv(): unknown socket handle %d", id)
	}
	line, rerr := reader.ReadString('\n')
	if rerr != nil && line == "" {
		return nil, value.Errorf(value.IOError, "recv() failed: %s", rerr)
	}
	return &value.String{Value: line}, nil
}

func tcpClose(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("close", args, 1, 1); err != nil {
		return nil, err
	}
	id, err := unpackInt("close", "handle", args[0])
	if err != nil {
		return nil, err
	}
	tcpMutex.Lock()
	conn, ok := tcpConns[id]
	delete(tcpConns, id)
	delete(tcpReaders, id)
	tcpMutex.Unlock()
	if !ok {
		return nil, value.Errorf(value.ValueError, "close(): unknown socket handle %d", id)
	}
	conn.Close()
	return value.NONE, nil
}
