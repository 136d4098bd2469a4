package sink

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/fernworks/obskit/config"
	"github.com/fernworks/obskit/record"
)

// MQTT connection constants.
const (
	// mqttConnectTimeout is the maximum time to wait for the initial connection.
	mqttConnectTimeout = 10 * time.Second

	// mqttPublishTimeout is the maximum time to wait for publish acknowledgment.
	mqttPublishTimeout = 5 * time.Second

	// mqttDisconnectQuiesce is the time to wait for pending operations on disconnect.
	mqttDisconnectQuiesce = 1000 // milliseconds

	// mqttKeepAlive is the keepalive interval for the connection.
	mqttKeepAlive = 60 * time.Second
)

// MQTT publishes each record as a JSON payload to a broker topic, so
// other services can subscribe to a live record stream.
//
// The broker connection is established lazily on the first Write; an
// unreachable broker surfaces as a per-write ErrWriteFailed and the
// record is dropped, keeping delivery best-effort like the other
// sinks.
//
// Thread Safety:
//   - Connection state and publishes are serialised by an internal
//     mutex.
type MQTT struct {
	mu     sync.Mutex
	cfg    config.MQTTConfig
	topic  string
	client pahomqtt.Client
}

// NewMQTT creates an MQTT sink. When cfg.Topic is empty the sink
// publishes to "obskit/records/<service>".
func NewMQTT(cfg config.MQTTConfig, service string) *MQTT {
	topic := cfg.Topic
	if topic == "" {
		topic = "obskit/records/" + service
	}
	return &MQTT{
		cfg:   cfg,
		topic: topic,
	}
}

// Write publishes the record as JSON with the configured QoS.
func (m *MQTT) Write(rec record.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: mqtt: encoding record: %w", ErrWriteFailed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		if err := m.connect(); err != nil {
			return fmt.Errorf("%w: mqtt: %w", ErrWriteFailed, err)
		}
	}

	token := m.client.Publish(m.topic, byte(m.cfg.QoS), false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("%w: mqtt: publish timeout after %v", ErrWriteFailed, mqttPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: mqtt: %w", ErrWriteFailed, err)
	}
	return nil
}

// connect establishes the broker connection. Caller holds the mutex.
func (m *MQTT) connect() error {
	client := pahomqtt.NewClient(buildClientOptions(m.cfg))

	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return fmt.Errorf("connect timeout after %v", mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}

	m.client = client
	return nil
}

// buildClientOptions creates paho MQTT options from the sink config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID and credentials (if provided)
//   - Auto-reconnect, clean session, keepalive
//   - TLS 1.2 minimum when TLS is enabled
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))

	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetKeepAlive(mqttKeepAlive)

	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
		})
	}

	return opts
}

// Name returns "mqtt".
func (m *MQTT) Name() string {
	return "mqtt"
}

// Close disconnects from the broker if a connection was made.
func (m *MQTT) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	m.client.Disconnect(mqttDisconnectQuiesce)
	m.client = nil
	return nil
}
