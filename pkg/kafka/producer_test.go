package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	topic    string
	written  []kafkago.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(t *testing.T) (*Producer, map[string]*fakeWriter) {
	t.Helper()
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	fakes := make(map[string]*fakeWriter)
	p.newWriter = func(topic string) messageWriter {
		w := &fakeWriter{topic: topic}
		fakes[topic] = w
		return w
	}
	return p, fakes
}

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %d", len(p.brokers))
	}
	if len(p.writers) != 0 {
		t.Errorf("expected empty writers map, got %d entries", len(p.writers))
	}
}

func TestNewProducerRejectsUnknownSASL(t *testing.T) {
	_, err := NewProducer(Config{
		Brokers:       []string{"localhost:9092"},
		SASLEnabled:   true,
		SASLMechanism: "GSSAPI",
		SASLUsername:  "advisor",
	})
	if err == nil {
		t.Fatal("expected error for unsupported mechanism")
	}
}

func TestPublishConvertsHeaders(t *testing.T) {
	p, fakes := newTestProducer(t)

	err := p.Publish(context.Background(), "advisor.application.submitted", Message{
		Key:     []byte("app-1"),
		Value:   []byte(`{"loan_amount":"1000000000"}`),
		Headers: map[string]string{"event_type": "advisor.application.submitted"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	w := fakes["advisor.application.submitted"]
	if w == nil || len(w.written) != 1 {
		t.Fatalf("expected one message written")
	}
	got := w.written[0]
	if string(got.Key) != "app-1" {
		t.Errorf("key = %s, want app-1", got.Key)
	}
	if len(got.Headers) != 1 || got.Headers[0].Key != "event_type" {
		t.Errorf("unexpected headers: %+v", got.Headers)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	p, fakes := newTestProducer(t)
	boom := errors.New("broker down")
	p.getOrCreateWriter("topic-a")
	fakes["topic-a"].writeErr = boom

	err := p.Publish(context.Background(), "topic-a", Message{Value: []byte("x")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestPublishNoMessages(t *testing.T) {
	p, fakes := newTestProducer(t)
	if err := p.Publish(context.Background(), "topic-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fakes) != 0 {
		t.Error("no writer should be created for an empty publish")
	}
}

func TestGetOrCreateWriter(t *testing.T) {
	p, _ := newTestProducer(t)

	w1 := p.getOrCreateWriter("topic-a")
	w2 := p.getOrCreateWriter("topic-a")
	if w1 != w2 {
		t.Error("expected same writer instance for same topic")
	}
	if w3 := p.getOrCreateWriter("topic-b"); w1 == w3 {
		t.Error("expected different writer instance for different topic")
	}
	if len(p.writers) != 2 {
		t.Errorf("expected 2 writers, got %d", len(p.writers))
	}
}

func TestProducerClose(t *testing.T) {
	p, fakes := newTestProducer(t)
	p.getOrCreateWriter("topic-a")
	p.getOrCreateWriter("topic-b")

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
	for topic, w := range fakes {
		if !w.closed {
			t.Errorf("writer for %s not closed", topic)
		}
	}
	if len(p.writers) != 0 {
		t.Errorf("expected 0 writers after close, got %d", len(p.writers))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no brokers", Config{}, true},
		{"plain", Config{Brokers: []string{"k:9092"}}, false},
		{"sasl without user", Config{Brokers: []string{"k:9092"}, SASLEnabled: true}, true},
		{"scram", Config{Brokers: []string{"k:9092"}, SASLEnabled: true, SASLMechanism: "SCRAM-SHA-512", SASLUsername: "u", SASLPassword: "p"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToMessage(t *testing.T) {
	msg := toMessage(kafkago.Message{
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte("advisor.catalog.synced")}},
	})
	if msg.Headers["event_type"] != "advisor.catalog.synced" {
		t.Errorf("unexpected headers: %v", msg.Headers)
	}
}
