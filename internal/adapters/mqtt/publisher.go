// Package mqtt forwards engine events to an MQTT broker. Each event is
// published as JSON to <topic>/<event-type>; a retained availability
// message tracks whether the publisher is connected.
package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

// DefaultTopic is the topic prefix used when none is configured.
const DefaultTopic = "wsniff"

// Config configures the broker connection.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
}

// EventSource hands out event subscriptions.
type EventSource interface {
	Subscribe(buffer int) (<-chan domain.Event, func())
}

// Publisher manages the MQTT connection and forwards every event from
// its source until the context is cancelled.
type Publisher struct {
	cfg    Config
	source EventSource
	logger *slog.Logger
	cm     *autopaho.ConnectionManager
}

// New creates a Publisher but does not connect. Call [Publisher.Start]
// to connect and begin forwarding.
func New(cfg Config, source EventSource, logger *slog.Logger) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	cfg.Topic = strings.TrimSuffix(cfg.Topic, "/")
	if cfg.ClientID == "" {
		cfg.ClientID = "wsniff"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{cfg: cfg, source: source, logger: logger}
}

// Start connects to the broker and forwards events. It blocks until ctx
// is cancelled.
func (p *Publisher) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(p.cfg.Broker)
	if err != nil {
		return fmt.Errorf("parse mqtt broker URL: %w", err)
	}

	availTopic := p.availabilityTopic()

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: p.cfg.Username,
		ConnectPassword: []byte(p.cfg.Password),
		WillMessage: &paho.WillMessage{
			Topic:   availTopic,
			Payload: []byte("offline"),
			QoS:     1,
			Retain:  true,
		},
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			p.logger.Info("mqtt connected to broker", "broker", p.cfg.Broker)
			p.publishAvailability(ctx, cm, "online")
		},
		OnConnectError: func(err error) {
			p.logger.Warn("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: p.cfg.ClientID,
		},
	}

	if brokerURL.Scheme == "mqtts" || brokerURL.Scheme == "ssl" {
		pahoCfg.TlsCfg = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	// Subscribe before connecting so no event emitted meanwhile is lost.
	events, cancel := p.source.Subscribe(512)
	defer cancel()

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.cm = cm

	connCtx, connCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connCancel()
	if err := cm.AwaitConnection(connCtx); err != nil {
		p.logger.Warn("mqtt initial connection timed out, will retry in background", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.publishEvent(ctx, ev)
		}
	}
}

// Stop publishes "offline" and disconnects.
func (p *Publisher) Stop(ctx context.Context) error {
	if p.cm == nil {
		return nil
	}
	p.publishAvailability(ctx, p.cm, "offline")
	return p.cm.Disconnect(ctx)
}

func (p *Publisher) availabilityTopic() string {
	return p.cfg.Topic + "/availability"
}

func (p *Publisher) eventTopic(t domain.EventType) string {
	return p.cfg.Topic + "/" + string(t)
}

// buildMessage renders ev as a publish packet. Only channel changes are
// sent at QoS 0; inventory additions and failures are sent at QoS 1.
func (p *Publisher) buildMessage(ev domain.Event) (*paho.Publish, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var qos byte = 1
	if ev.Type == domain.EventChannelChanged {
		qos = 0
	}
	return &paho.Publish{
		Topic:   p.eventTopic(ev.Type),
		Payload: payload,
		QoS:     qos,
	}, nil
}

func (p *Publisher) publishEvent(ctx context.Context, ev domain.Event) {
	msg, err := p.buildMessage(ev)
	if err != nil {
		p.logger.Error("mqtt marshal event", "type", ev.Type, "error", err)
		return
	}
	if _, err := p.cm.Publish(ctx, msg); err != nil {
		p.logger.Debug("mqtt event publish failed", "topic", msg.Topic, "error", err)
	}
}

func (p *Publisher) publishAvailability(ctx context.Context, cm *autopaho.ConnectionManager, status string) {
	if _, err := cm.Publish(ctx, &paho.Publish{
		Topic:   p.availabilityTopic(),
		Payload: []byte(status),
		QoS:     1,
		Retain:  true,
	}); err != nil {
		p.logger.Warn("mqtt availability publish failed", "status", status, "error", err)
	} else {
		p.logger.Info("mqtt availability published", "status", status)
	}
}
