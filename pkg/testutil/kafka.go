package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

// KafkaContainer wraps a testcontainers Kafka instance.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts a single-node Kafka for testing. The test is
// skipped in -short mode. The container is terminated when the test ends.
func NewKafkaContainer(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	kafkaContainer, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("advisor-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}

	kc := &KafkaContainer{Container: kafkaContainer}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := kc.Container.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate kafka container: %v", err)
		}
	})

	kc.Brokers, err = kafkaContainer.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return kc
}

// CreateTopics creates single-partition topics through the cluster
// controller so consumers can join before anything is produced.
func (kc *KafkaContainer) CreateTopics(ctx context.Context, t *testing.T, topics ...string) {
	t.Helper()
	conn, err := kafkago.DialContext(ctx, "tcp", kc.Brokers[0])
	if err != nil {
		t.Fatalf("failed to dial kafka: %v", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		t.Fatalf("failed to find kafka controller: %v", err)
	}
	ctrl, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		t.Fatalf("failed to dial kafka controller: %v", err)
	}
	defer ctrl.Close()

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	}
	if err := ctrl.CreateTopics(configs...); err != nil {
		t.Fatalf("failed to create topics %v: %v", topics, err)
	}
}
