package mq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/FlowMaster/internal/domain"
	"github.com/shaiso/FlowMaster/internal/executor"
)

func TestEventRoutingKey(t *testing.T) {
	assert.Equal(t, RoutingKey("execution.log"), EventRoutingKey(string(executor.EventLog)))
	assert.Equal(t, RoutingKeyResult, EventRoutingKey(string(executor.EventResult)))
}

func TestNewEventMessage(t *testing.T) {
	event := executor.Event{
		Kind:   executor.EventNodeStart,
		RunID:  uuid.New(),
		FlowID: "flow-1",
		NodeID: "t1",
	}

	msg := NewEventMessage(event)
	assert.Equal(t, MessageTypeNodeStart, msg.Type)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestEventMessageType(t *testing.T) {
	tests := []struct {
		kind     executor.EventKind
		expected MessageType
	}{
		{executor.EventLog, MessageTypeLog},
		{executor.EventNodeStart, MessageTypeNodeStart},
		{executor.EventNodeComplete, MessageTypeNodeComplete},
		{executor.EventResult, MessageTypeResult},
		{"custom", MessageType("execution.custom")},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, EventMessageType(tt.kind))
			// Тип сообщения совпадает с ключом маршрутизации
			assert.Equal(t, string(EventRoutingKey(string(tt.kind))), string(tt.expected))
		})
	}
}

func TestDecodeEvent_RoundTrip(t *testing.T) {
	ok := true
	event := executor.Event{
		Kind:     executor.EventNodeComplete,
		RunID:    uuid.New(),
		FlowID:   "flow-1",
		NodeID:   "a1",
		Success:  &ok,
		Progress: 50,
	}

	// Так сообщение выглядит после доставки: payload — это map
	body, err := json.Marshal(NewEventMessage(event))
	require.NoError(t, err)

	var delivered Message
	require.NoError(t, json.Unmarshal(body, &delivered))

	decoded, err := DecodeEvent(&delivered)
	require.NoError(t, err)
	assert.Equal(t, event.RunID, decoded.RunID)
	assert.Equal(t, "a1", decoded.NodeID)
	assert.True(t, decoded.Succeeded())
	assert.Equal(t, 50.0, decoded.Progress)
}

func TestDecodeEvent_Log(t *testing.T) {
	event := executor.Event{
		Kind:  executor.EventLog,
		RunID: uuid.New(),
		Log: &domain.ExecutionLog{
			NodeID:  domain.SystemNodeID,
			Level:   domain.LogLevelInfo,
			Message: "Starting execution of flow: Test (2 steps)",
		},
	}

	body, err := json.Marshal(NewEventMessage(event))
	require.NoError(t, err)

	var delivered Message
	require.NoError(t, json.Unmarshal(body, &delivered))

	decoded, err := DecodeEvent(&delivered)
	require.NoError(t, err)
	require.NotNil(t, decoded.Log)
	assert.Equal(t, event.Log.Message, decoded.Log.Message)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent(&Message{ID: "m1", Payload: map[string]any{"runId": uuid.New().String()}})
	assert.Error(t, err)

	_, err = DecodeEvent(&Message{ID: "m2", Payload: "not an event"})
	assert.Error(t, err)
}

func TestTopologyInfo(t *testing.T) {
	info := TopologyInfo()
	assert.Contains(t, info, string(ExchangeExecutions))
	assert.Contains(t, info, string(QueueExecutionResults))
}

// delivered прогоняет сообщение через JSON, как после доставки из очереди.
func delivered(t *testing.T, msg *Message) *Message {
	t.Helper()

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var out Message
	require.NoError(t, json.Unmarshal(body, &out))
	return &out
}

func TestDecodeResult(t *testing.T) {
	event := executor.Event{
		Kind:   executor.EventResult,
		RunID:  uuid.New(),
		FlowID: "flow-1",
		Result: &domain.ExecutionResult{Status: domain.ExecutionStatusSuccess, Output: "done"},
	}

	decoded, err := DecodeResult(delivered(t, NewEventMessage(event)))
	require.NoError(t, err)
	assert.Equal(t, event.RunID, decoded.RunID)
	require.NotNil(t, decoded.Result)
	assert.Equal(t, domain.ExecutionStatusSuccess, decoded.Result.Status)
	assert.Equal(t, "done", decoded.Result.Output)
}

func TestDecodeResult_Rejects(t *testing.T) {
	runID := uuid.New()

	tests := []struct {
		name string
		msg  *Message
	}{
		{
			name: "log message",
			msg:  NewEventMessage(executor.Event{Kind: executor.EventLog, RunID: runID, Log: &domain.ExecutionLog{Message: "x"}}),
		},
		{
			name: "result type without result",
			msg:  NewEventMessage(executor.Event{Kind: executor.EventResult, RunID: runID}),
		},
		{
			name: "result type with foreign kind",
			msg: &Message{ID: "m1", Type: MessageTypeResult, Payload: executor.Event{
				Kind: executor.EventNodeStart, RunID: runID, NodeID: "t1",
			}},
		},
		{
			name: "broken payload",
			msg:  &Message{ID: "m2", Type: MessageTypeResult, Payload: "not an event"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResult(delivered(t, tt.msg))
			assert.Error(t, err)
		})
	}
}
