package handlers

import (
	"context"
	"encoding/json"
	"time"

	"npcgate/gateway/pkg/bridge"
)

// Bridge is the part of *bridge.Client the dialog handlers use.
type Bridge interface {
	Submit(ctx context.Context, taskType bridge.TaskType, payload any, timeout time.Duration) (json.RawMessage, error)
}

// WorkerStatus reports the worker connection state.
type WorkerStatus interface {
	Connected() bool
	Pending() int
}

// WorkerBridge is the part of *bridge.Client the worker endpoint uses.
type WorkerBridge interface {
	Connect(conn bridge.Conn)
	Disconnect(conn bridge.Conn) bool
	HandleFrame(conn bridge.Conn, frame []byte)
}
