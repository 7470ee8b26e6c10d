package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/teslashibe/go-nidhogg/internal/log"
)

// MQTTConfig configures the MQTT sink.
type MQTTConfig struct {
	Broker   string // e.g. "tcp://localhost:1883"
	ClientID string
	Username string
	Password string

	// QoS for state messages. 0 is right for a high-rate stream.
	QoS byte

	// Retained makes the broker keep the last state per topic.
	Retained bool

	// PublishTimeout bounds the wait for the broker acknowledgement.
	PublishTimeout time.Duration
}

// DefaultMQTTConfig returns a config for a local broker.
func DefaultMQTTConfig(broker string) MQTTConfig {
	return MQTTConfig{
		Broker:         broker,
		ClientID:       "nidhogg",
		Retained:       true,
		PublishTimeout: 2 * time.Second,
	}
}

// StateTopic is the topic a robot's states are published on.
func StateTopic(bodyID string) string {
	return fmt.Sprintf("nao/%s/state", bodyID)
}

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// MQTT publishes snapshots to StateTopic(body id).
type MQTT struct {
	client publisher
	cfg    MQTTConfig
	logger *slog.Logger
}

// NewMQTT connects to the broker.
func NewMQTT(cfg MQTTConfig) (*MQTT, error) {
	logger := log.With("component", "mqtt_sink", "broker", cfg.Broker)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(1 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost, reconnecting", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect to MQTT broker: %w", token.Error())
	}
	return newMQTT(client, cfg, logger), nil
}

func newMQTT(client publisher, cfg MQTTConfig, logger *slog.Logger) *MQTT {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	return &MQTT{client: client, cfg: cfg, logger: logger}
}

// Publish sends snap and waits for the broker, up to PublishTimeout or
// until ctx is done.
func (m *MQTT) Publish(ctx context.Context, snap Snapshot) error {
	payload, err := snap.Bytes()
	if err != nil {
		return fmt.Errorf("telemetry: encode snapshot: %w", err)
	}

	topic := StateTopic(snap.BodyID)
	token := m.client.Publish(topic, m.cfg.QoS, m.cfg.Retained, payload)

	timer := time.NewTimer(m.cfg.PublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("telemetry: publish to %s: timed out after %s", topic, m.cfg.PublishTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
		m.logger.Info("MQTT sink disconnected")
	}
	return nil
}
