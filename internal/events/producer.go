package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaProducer は注文イベントをトピックへ送る。
// commit後のベストエフォート通知用で、注文処理の成否には影響させない。
type KafkaProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducer{
		writer: writer,
		logger: logger,
	}
}

func (p *KafkaProducer) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	return p.publish(ctx, event.OrderID, event)
}

func (p *KafkaProducer) PublishOrderCanceled(ctx context.Context, event OrderCanceledEvent) error {
	return p.publish(ctx, event.OrderID, event)
}

func (p *KafkaProducer) publish(ctx context.Context, key string, event any) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal order event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish order event", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
