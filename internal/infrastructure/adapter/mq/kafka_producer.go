// Package mq wraps the Kafka producer that delivers drained outbox events
package mq

import (
	"fmt"

	"github.com/IBM/sarama"
)

// Producer publishes ledger events to Kafka
type Producer interface {
	// Send publishes one message and waits for broker acknowledgement
	Send(topic, key, value string) error
	// Close releases the underlying connections
	Close() error
}

// KafkaProducer implements Producer on a sarama SyncProducer
type KafkaProducer struct {
	producer sarama.SyncProducer
}

// NewKafkaProducer connects to the brokers with full-acknowledgement settings
func NewKafkaProducer(brokers []string) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaProducer{producer: producer}, nil
}

// Send publishes one message and waits for broker acknowledgement
func (p *KafkaProducer) Send(topic, key, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

// Close releases the underlying connections
func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
