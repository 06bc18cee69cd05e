package publisher

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"energy-service/internal/models"
)

type AMQPConfig struct {
	URL      string
	Exchange string
}

// AMQP publishes results to a durable topic exchange with routing key
// predictions.<owner>.
type AMQP struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewAMQP(cfg AMQPConfig) (*AMQP, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("AMQP url is required when enabled")
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = "energy.analytics"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening AMQP channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	return &AMQP{conn: conn, ch: ch, exchange: exchange}, nil
}

func RoutingKey(ownerID string) string {
	return "predictions." + ownerSegment(ownerID)
}

func (p *AMQP) Publish(ctx context.Context, result models.AnalyticsResult) error {
	body, err := encode(result)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		RoutingKey(result.Bill.OwnerID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%d", result.Bill.ID),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publishing to AMQP: %w", err)
	}
	return nil
}

func (p *AMQP) Close() error {
	p.ch.Close()
	return p.conn.Close()
}
