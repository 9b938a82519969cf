package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"juneberry/internal/usecase"

	kafkaGo "github.com/segmentio/kafka-go"
)

// kafka.Writer の送信部分
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// orders.placed に流すイベント
type OrderPlacedEvent struct {
	OrderID      string                    `json:"order_id"`
	CustomerName string                    `json:"customer_name"`
	Phone        string                    `json:"phone"`
	Country      string                    `json:"country"`
	Total        int64                     `json:"total"`
	ShippingCost int64                     `json:"shipping_cost"`
	GrandTotal   int64                     `json:"grand_total"`
	Items        []usecase.OrderItemOutput `json:"items"`
	PlacedAt     time.Time                 `json:"placed_at"`
}

// KafkaOrderNotifier は確定した注文を管理側に通知する。
type KafkaOrderNotifier struct {
	w messageWriter
}

func NewKafkaOrderNotifier(brokers []string, topic string) *KafkaOrderNotifier {
	return &KafkaOrderNotifier{w: &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.LeastBytes{},
		RequiredAcks: kafkaGo.RequireOne,
		WriteTimeout: 5 * time.Second,
	}}
}

func (n *KafkaOrderNotifier) OrderPlaced(ctx context.Context, order usecase.OrderOutput) error {
	payload, err := json.Marshal(OrderPlacedEvent{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Phone:        order.Phone,
		Country:      order.Country,
		Total:        order.Total,
		ShippingCost: order.ShippingCost,
		GrandTotal:   order.GrandTotal,
		Items:        order.Items,
		PlacedAt:     order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := n.w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(order.ID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.ID, err)
	}
	return nil
}

func (n *KafkaOrderNotifier) Close() error {
	return n.w.Close()
}
