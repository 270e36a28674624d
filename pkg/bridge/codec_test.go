package bridge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTask(t *testing.T) {
	frame, err := EncodeTask("req-1", TaskEmotion, map[string]string{"text": "hello", "locale": "ko-KR"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, "req-1", decoded["request_id"])
	assert.Equal(t, "emotion", decoded["type"])
	assert.Equal(t, map[string]any{"text": "hello", "locale": "ko-KR"}, decoded["payload"])
}

func TestEncodeTask_NilPayload(t *testing.T) {
	frame, err := EncodeTask("req-1", TaskGPT, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_id":"req-1","type":"gpt","payload":{}}`, string(frame))
}

func TestEncodeTask_Rejects(t *testing.T) {
	_, err := EncodeTask("req-1", TaskType("summarize"), nil)
	assert.True(t, errors.Is(err, ErrUnknownTaskType))

	_, err = EncodeTask("", TaskGPT, nil)
	assert.Error(t, err)

	_, err = EncodeTask("req-1", TaskGPT, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name       string
		frame      string
		wantErr    bool
		wantFailed bool
	}{
		{name: "result", frame: `{"request_id":"a","result":{"emotion":"joy"},"error":null}`},
		{name: "error string", frame: `{"request_id":"a","result":null,"error":"model crashed"}`, wantFailed: true},
		{name: "empty error string resolves", frame: `{"request_id":"a","result":{},"error":""}`},
		{name: "error omitted", frame: `{"request_id":"a","result":[1,2]}`},
		{name: "not json", frame: `not json`, wantErr: true},
		{name: "json array", frame: `[1,2,3]`, wantErr: true},
		{name: "missing request id", frame: `{"result":{}}`, wantErr: true},
		{name: "numeric request id", frame: `{"request_id":7,"result":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeResult([]byte(tt.frame))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedMessage))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", env.RequestID)
			assert.Equal(t, tt.wantFailed, env.Failed())
		})
	}
}

func TestTaskTypeValid(t *testing.T) {
	assert.True(t, TaskEmotion.Valid())
	assert.True(t, TaskGPT.Valid())
	assert.False(t, TaskType("").Valid())
}
