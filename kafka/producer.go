package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"checkout-service/models"
)

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("[Kafka] producer initialized topic=%s brokers=%v", topic, brokers)
	return &Producer{writer: w, topic: topic}
}

// SendOrderConfirmation publishes an order.confirmed event. It
// implements the notifier contract used by the checkout orchestrator.
func (p *Producer) SendOrderConfirmation(ctx context.Context, order *models.Order, recipient string) error {
	event := models.OrderConfirmedEvent{
		Event:       "order.confirmed",
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Recipient:   recipient,
		Amount:      order.Amount,
		Method:      order.PaymentMethod,
		Timestamp:   time.Now().UTC(),
	}
	if order.UserID != nil {
		event.UserID = order.UserID.String()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
