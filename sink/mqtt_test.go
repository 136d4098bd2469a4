package sink

import (
	"testing"

	"github.com/fernworks/obskit/config"
)

func TestNewMQTT_TopicDefault(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		service string
		want    string
	}{
		{
			name:    "derived from service",
			service: "billing-api",
			want:    "obskit/records/billing-api",
		},
		{
			name:    "explicit topic wins",
			topic:   "logs/custom",
			service: "billing-api",
			want:    "logs/custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMQTT(config.MQTTConfig{Topic: tt.topic}, tt.service)
			if m.topic != tt.want {
				t.Errorf("topic = %q, want %q", m.topic, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(config.MQTTConfig{
		Host:     "broker.local",
		Port:     8883,
		TLS:      true,
		ClientID: "obskit-test",
		Username: "user",
		Password: "pw",
	})

	if len(opts.Servers) != 1 {
		t.Fatalf("expected one broker, got %d", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "ssl://broker.local:8883" {
		t.Errorf("broker URL = %q, want ssl://broker.local:8883", got)
	}
	if opts.ClientID != "obskit-test" {
		t.Errorf("client id = %q, want obskit-test", opts.ClientID)
	}
	if opts.Username != "user" {
		t.Errorf("username = %q, want user", opts.Username)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion < 0x0303 {
		t.Error("TLS config missing or below TLS 1.2")
	}

	plain := buildClientOptions(config.MQTTConfig{Host: "localhost", Port: 1883})
	if got := plain.Servers[0].String(); got != "tcp://localhost:1883" {
		t.Errorf("broker URL = %q, want tcp://localhost:1883", got)
	}
}
