package bridge

import (
	"encoding/json"
	"fmt"
)

// TaskType identifies the kind of inference work a worker performs.
type TaskType string

const (
	// TaskEmotion asks the worker to classify the emotion of a text.
	TaskEmotion TaskType = "emotion"

	// TaskGPT asks the worker to generate an NPC line.
	TaskGPT TaskType = "gpt"
)

// Valid reports whether t is a task type the worker understands.
func (t TaskType) Valid() bool {
	switch t {
	case TaskEmotion, TaskGPT:
		return true
	default:
		return false
	}
}

// TaskEnvelope is the outbound frame sent to the worker.
type TaskEnvelope struct {
	RequestID string          `json:"request_id"`
	Type      TaskType        `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// ResultEnvelope is the inbound frame received from the worker.
// Exactly one of Result or Error is meaningful.
type ResultEnvelope struct {
	RequestID string          `json:"request_id"`
	Result    json.RawMessage `json:"result"`
	Error     *string         `json:"error"`
}

// Failed reports whether the worker rejected the task.
// A null or empty error string counts as success.
func (r *ResultEnvelope) Failed() bool {
	return r.Error != nil && *r.Error != ""
}

// EncodeTask builds the wire form of a task. The payload must be
// JSON-serializable; a nil payload is sent as an empty object.
func EncodeTask(requestID string, taskType TaskType, payload any) ([]byte, error) {
	if requestID == "" {
		return nil, fmt.Errorf("request id is required")
	}
	if !taskType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}

	raw := json.RawMessage(`{}`)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", taskType, err)
		}
		raw = b
	}

	return json.Marshal(TaskEnvelope{
		RequestID: requestID,
		Type:      taskType,
		Payload:   raw,
	})
}

// DecodeResult parses an inbound frame. Any frame that is not a JSON object
// carrying a non-empty request_id is reported as ErrMalformedMessage.
func DecodeResult(frame []byte) (*ResultEnvelope, error) {
	var env ResultEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if env.RequestID == "" {
		return nil, fmt.Errorf("%w: missing request_id", ErrMalformedMessage)
	}
	return &env, nil
}
