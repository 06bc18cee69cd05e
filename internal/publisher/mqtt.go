package publisher

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"energy-service/internal/models"
)

type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
	QoS         byte
}

// MQTT publishes results to <prefix>/<owner>/predictions.
type MQTT struct {
	client      mqtt.Client
	topicPrefix string
	qos         byte
}

func NewMQTT(cfg MQTTConfig) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	topicPrefix := cfg.TopicPrefix
	if topicPrefix == "" {
		topicPrefix = "energy"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "energy-service"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &MQTT{
		client:      client,
		topicPrefix: topicPrefix,
		qos:         cfg.QoS,
	}, nil
}

func (p *MQTT) Topic(ownerID string) string {
	return fmt.Sprintf("%s/%s/predictions", p.topicPrefix, ownerSegment(ownerID))
}

func (p *MQTT) Publish(ctx context.Context, result models.AnalyticsResult) error {
	body, err := encode(result)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.Topic(result.Bill.OwnerID), p.qos, false, body)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to MQTT: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publishing to MQTT: %w", ctx.Err())
	}
}

// Close disconnects from the MQTT broker.
func (p *MQTT) Close() error {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	return nil
}
