package kafka

import (
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	ConsumerGroup string

	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	Brokers []string

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}

// Validate reports missing or inconsistent settings.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	if c.SASLEnabled {
		if c.SASLUsername == "" {
			return errors.New("kafka: sasl username is required")
		}
		if _, err := c.saslMechanism(); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) tlsConfig() *tls.Config {
	if !c.TLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// saslMechanism returns the configured mechanism, or nil when SASL is off.
func (c Config) saslMechanism() (sasl.Mechanism, error) {
	if !c.SASLEnabled {
		return nil, nil
	}
	switch c.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
	case "PLAIN", "":
		return plain.Mechanism{Username: c.SASLUsername, Password: c.SASLPassword}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported sasl mechanism %q", c.SASLMechanism)
	}
}

// transport builds the writer transport carrying TLS and SASL settings.
func (c Config) transport() (*kafkago.Transport, error) {
	mech, err := c.saslMechanism()
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{
		TLS:  c.tlsConfig(),
		SASL: mech,
	}, nil
}

// dialer builds the reader dialer carrying TLS and SASL settings.
func (c Config) dialer() (*kafkago.Dialer, error) {
	mech, err := c.saslMechanism()
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           c.tlsConfig(),
		SASLMechanism: mech,
	}, nil
}
