// Package events publishes domain change notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	FormCreated    EventType = "form_created"
	FormUpdated    EventType = "form_updated"
	FormDeleted    EventType = "form_deleted"
	NegocioCreated EventType = "negocio_created"
	NegocioUpdated EventType = "negocio_updated"
	NegocioDeleted EventType = "negocio_deleted"
	UserCreated    EventType = "user_created"
	UserUpdated    EventType = "user_updated"
	UserDeleted    EventType = "user_deleted"
)

type Event struct {
	Type       EventType   `json:"type"`
	ID         string      `json:"id"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// Publisher is what services depend on. Produce never blocks the caller.
type Publisher interface {
	Produce(eventType EventType, id string, data interface{})
	Close()
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	queueSize    = 1000
	writeTimeout = 10 * time.Second
)

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

// NewProducer ensures the topic exists and starts the delivery loop.
func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	p := newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
	}, logger, queueSize)
	go p.eventLoop()
	return p, nil
}

func newProducer(w KafkaWriter, logger *zap.Logger, size int) *Producer {
	return &Producer{
		writer:    w,
		events:    make(chan Event, size),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (p *Producer) Produce(eventType EventType, id string, data interface{}) {
	select {
	case p.events <- Event{Type: eventType, ID: id, OccurredAt: time.Now().UTC(), Data: data}:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.String("id", id),
		)
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.send(event)
		case <-p.closeChan:
			for {
				select {
				case event := <-p.events:
					p.send(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Producer) send(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	p.sendEvent(ctx, event)
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("id", event.ID),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("id", event.ID),
		)
	}
}

// Close drains queued events and closes the writer.
func (p *Producer) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Produce(EventType, string, interface{}) {}
func (Noop) Close()                                 {}
