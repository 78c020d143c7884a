package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	BrokerURL string
	Username  string
	Password  string
	ClientID  string
}

// MQTTSubscriber implements Subscriber against an MQTT broker.
type MQTTSubscriber struct {
	client mqtt.Client
	logger ectologger.Logger
}

// NewMQTTSubscriber connects to the broker and returns a subscriber.
func NewMQTTSubscriber(cfg MQTTConfig, logger ectologger.Logger) (*MQTTSubscriber, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("jjm-reconciler-%s", uuid.NewString())
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, errors.New("timed out connecting to mqtt broker")
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to mqtt broker")
	}

	logger.WithFields(map[string]any{"broker": cfg.BrokerURL, "client_id": clientID}).
		Info("connected to mqtt broker")

	return &MQTTSubscriber{client: client, logger: logger}, nil
}

// Subscribe subscribes to each topic at QoS 0 and forwards message bodies to
// the handler. The returned func unsubscribes all topics.
func (s *MQTTSubscriber) Subscribe(ctx context.Context, topics []string, handler func(topic string, body []byte)) (func(), error) {
	filters := make(map[string]byte, len(topics))
	for _, topic := range topics {
		filters[topic] = 0
	}

	token := s.client.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to topics")
	}

	return func() {
		unsub := s.client.Unsubscribe(topics...)
		unsub.WaitTimeout(5 * time.Second)
		if err := unsub.Error(); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("failed to unsubscribe from topics")
		}
	}, nil
}

// Close disconnects from the broker.
func (s *MQTTSubscriber) Close() {
	s.client.Disconnect(250)
}
