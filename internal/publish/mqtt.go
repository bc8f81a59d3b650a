// Package publish sends readings to an MQTT broker as JSON envelopes.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	vitals "github.com/tphakala/go-bvp-vitals"
)

const (
	// DefaultTopicPrefix is prepended to the metric name.
	DefaultTopicPrefix = "vitals/bvp"

	// DefaultTimeout bounds one publish acknowledgement.
	DefaultTimeout = 5 * time.Second

	defaultQoS = 1
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt publish timed out")

// Client is the part of mqtt.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// Envelope is the message body.
type Envelope struct {
	Session     uuid.UUID `json:"session"`
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	Systolic    float64   `json:"systolic"`
	Diastolic   float64   `json:"diastolic"`
	TimestampMs int64     `json:"timestamp_ms"`
	Cycle       uint64    `json:"cycle"`
	Error       string    `json:"error,omitempty"`
}

// Publisher publishes readings under <prefix>/<metric>.
type Publisher struct {
	client  Client
	prefix  string
	session uuid.UUID
	qos     byte
	timeout time.Duration
}

// NewPublisher creates a publisher with a fresh session id. An empty prefix
// selects DefaultTopicPrefix.
func NewPublisher(client Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Publisher{
		client:  client,
		prefix:  prefix,
		session: uuid.New(),
		qos:     defaultQoS,
		timeout: DefaultTimeout,
	}
}

// Session returns the id stamped on every envelope.
func (p *Publisher) Session() uuid.UUID { return p.session }

// Topic returns the topic for a metric.
func (p *Publisher) Topic(m vitals.Metric) string {
	return p.prefix + "/" + m.String()
}

// Envelope wraps a reading for publishing.
func (p *Publisher) Envelope(r vitals.Reading) Envelope {
	env := Envelope{
		Session:     p.session,
		Metric:      r.Metric.String(),
		Value:       r.Value,
		Systolic:    r.Systolic,
		Diastolic:   r.Diastolic,
		TimestampMs: r.TimestampMs,
		Cycle:       r.Cycle,
	}
	if r.Err != nil {
		env.Error = r.Err.Error()
	}
	return env
}

// Publish sends one reading and waits for the acknowledgement.
func (p *Publisher) Publish(r vitals.Reading) error {
	payload, err := json.Marshal(p.Envelope(r))
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	token := p.client.Publish(p.Topic(r.Metric), p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("%w: %s", ErrTimeout, p.Topic(r.Metric))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", r.Metric, err)
	}
	return nil
}

// Connect dials the broker with auto-reconnect enabled.
func Connect(broker, clientID string, log *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info("mqtt connected", "broker", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "err", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", broker, token.Error())
	}
	return client, nil
}
