/*
Package bridge forwards inference tasks to a single locally attached AI worker
over a persistent duplex connection and correlates the worker's replies back
to the waiting callers.

# Components

  - Codec: TaskEnvelope (outbound) and ResultEnvelope (inbound) JSON frames.
  - Correlator: the table of outstanding requests, keyed by request id.
  - Registry: holds at most one live worker connection and serializes writes.
  - Client: the façade used by HTTP handlers.

# Basic Usage

	client := bridge.NewClient(bridge.Config{DefaultTimeout: 10 * time.Second})
	defer client.Close()

	// transport side (e.g. a websocket handler)
	client.Connect(conn)
	defer client.Disconnect(conn)
	for {
		frame, err := read()
		if err != nil {
			return
		}
		client.HandleFrame(conn, frame)
	}

	// caller side
	result, err := client.Submit(ctx, bridge.TaskEmotion, payload, 2*time.Second)

# Wire Format

	-> {"request_id": "...", "type": "emotion"|"gpt", "payload": {...}}
	<- {"request_id": "...", "result": {...}|null, "error": "..."|null}

Replies are matched purely by id and may arrive in any order. A reply for an
unknown, expired or already-resolved id is discarded. A reply is only accepted
on the connection its request was sent on.

# Timeouts and Connection Loss

Every submitted task reaches exactly one terminal outcome: a result, a
*WorkerError, a *TimeoutError, ErrConnectionLost, or a send failure. There is
no protocol message to cancel work at the worker; a reply that arrives after
its timeout finds no table entry and is dropped.
*/
package bridge
