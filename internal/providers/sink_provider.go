package providers

import (
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"time"
)

const (
	publishQos     = 1
	publishTimeout = 10 * time.Second
	connectTimeout = 10 * time.Second
)

// SinkProviderInterface publishes retained messages.
type SinkProviderInterface interface {
	Publish(topic string, payload []byte) error
	Close()
}

type MqttSink struct {
	client  mqtt.Client
	timeout time.Duration
}

func (s *MqttSink) Publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, publishQos, true, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish to %s timed out after %s", topic, s.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (s *MqttSink) Close() {
	s.client.Disconnect(250)
}

// noopSink replaces the broker in dry-run mode.
type noopSink struct {
	logger Logger
}

func (n *noopSink) Publish(topic string, payload []byte) error {
	n.logger.Debugf(TypePublish, "[dry-run] %s = %s", topic, payload)
	return nil
}

func (n *noopSink) Close() {}

func brokerUrl(conf *structures.Config) string {
	return fmt.Sprintf("tcp://%s:%d", conf.Broker.Host, conf.Broker.Port)
}

func NewSinkProvider(conf *structures.Config, logger Logger) (SinkProviderInterface, error) {
	if conf.DryRun {
		logger.Infof(TypeApp, "Dry run: messages are logged instead of published")
		return &noopSink{logger: logger}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerUrl(conf)).
		SetClientID(conf.Broker.ClientID).
		SetUsername(conf.Broker.Username).
		SetPassword(conf.Broker.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(_ mqtt.Client) {
			logger.Infof(TypePublish, "Connected to broker %s", brokerUrl(conf))
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warnf(TypePublish, "Connection to broker lost: %s", err)
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to %s timed out", brokerUrl(conf))
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", brokerUrl(conf), err)
	}

	return &MqttSink{client: client, timeout: publishTimeout}, nil
}
