package output

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/tripzones/internal/models"
)

// KafkaOutput publishes every report as one JSON message keyed by run id.
type KafkaOutput struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaConfig(config *models.Config) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	if config.Kafka.DialTimeout > 0 {
		saramaConfig.Net.DialTimeout = config.Kafka.DialTimeout
	}

	if config.Kafka.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.Kafka.SessionTimeoutMs) * time.Millisecond
	} else {
		saramaConfig.Consumer.Group.Session.Timeout = 45 * time.Second
	}
	return saramaConfig
}

func NewKafkaOutput(config *models.Config) (*KafkaOutput, error) {
	brokerList := strings.Split(config.Kafka.BrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, NewSaramaConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Printf("Sarama producer created successfully with brokers %v", brokerList)
	return NewKafkaOutputWithProducer(producer, config.Kafka.Topic), nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer, topic string) *KafkaOutput {
	return &KafkaOutput{producer: producer, topic: topic}
}

func (k *KafkaOutput) WriteReport(_ context.Context, report *models.Report) error {
	if k.producer == nil {
		return fmt.Errorf("Kafka producer is closed")
	}
	msg, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(report.RunID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		log.Printf("Failed to send report to topic %s: %v", k.topic, err)
		return err
	}
	log.Printf("Report %s sent to %s[%d]@%d", report.RunID, k.topic, partition, offset)
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
