package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestProducer_Produce(t *testing.T) {
	t.Run("queues event", func(t *testing.T) {
		p := newProducer(new(MockKafkaWriter), zaptest.NewLogger(t), 4)
		p.Produce(FormCreated, "abc", map[string]string{"k": "v"})
		require.Len(t, p.events, 1)
		ev := <-p.events
		assert.Equal(t, FormCreated, ev.Type)
		assert.Equal(t, "abc", ev.ID)
		assert.False(t, ev.OccurredAt.IsZero())
	})

	t.Run("drops when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		p := newProducer(new(MockKafkaWriter), zap.New(core), 1)

		p.Produce(FormCreated, "a", nil)
		p.Produce(FormCreated, "b", nil)

		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	t.Run("writes keyed json message", func(t *testing.T) {
		w := new(MockKafkaWriter)
		p := newProducer(w, zaptest.NewLogger(t), 1)
		w.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

		p.sendEvent(context.Background(), Event{Type: NegocioCreated, ID: "n1"})

		require.Len(t, w.Calls, 1)
		msgs := w.Calls[0].Arguments.Get(1).([]kafka.Message)
		require.Len(t, msgs, 1)
		assert.Equal(t, []byte("n1"), msgs[0].Key)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msgs[0].Value, &decoded))
		assert.Equal(t, "negocio_created", decoded["type"])
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		w := new(MockKafkaWriter)
		p := &Producer{writer: w, logger: zap.New(core)}

		old := jsonMarshal
		jsonMarshal = func(interface{}) ([]byte, error) { return nil, errors.New("mock marshal error") }
		defer func() { jsonMarshal = old }()

		p.sendEvent(context.Background(), Event{Type: FormDeleted, ID: "f1"})

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
		w.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		w := new(MockKafkaWriter)
		w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))
		p := &Producer{writer: w, logger: zap.New(core)}

		p.sendEvent(context.Background(), Event{Type: FormDeleted, ID: "f1"})

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_CloseDrainsQueue(t *testing.T) {
	w := new(MockKafkaWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	w.On("Close").Return(nil)

	p := newProducer(w, zaptest.NewLogger(t), 8)
	p.Produce(UserCreated, "u1", nil)
	p.Produce(UserDeleted, "u1", nil)
	go p.eventLoop()

	p.Close()

	w.AssertNumberOfCalls(t, "WriteMessages", 2)
	w.AssertCalled(t, "Close")
}

func TestNoop(t *testing.T) {
	var pub Publisher = Noop{}
	pub.Produce(FormCreated, "x", nil)
	pub.Close()
}
