package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sksuman14/blesense/internal/config"
	"github.com/sksuman14/blesense/internal/sense"
)

// Publisher bridges decoded readings to an MQTT broker so remote dashboards
// can follow a scan session live. It implements sense.Sink.
type Publisher struct {
	client      mqtt.Client
	cfg         config.Config
	logger      *slog.Logger
	topicPrefix string

	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// readingMessage is the wire shape published per decoded reading.
type readingMessage struct {
	Address    string        `json:"address"`
	DeviceType string        `json:"device_type"`
	At         time.Time     `json:"at"`
	Reading    sense.Reading `json:"reading"`
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	p := &Publisher{
		cfg:         cfg,
		logger:      logger,
		topicPrefix: cfg.MQTTTopicPrefix,
		stopCh:      make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	// Session settings
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	// Keepalive / timeouts
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Callbacks keep internal state accurate
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect establishes the broker connection. It waits for the initial
// connect and respects ctx and Disconnect().
func (p *Publisher) Connect(ctx context.Context) error {
	// Fail fast if already stopped.
	select {
	case <-p.stopCh:
		return fmt.Errorf("publisher stopped")
	default:
	}

	// Fast path.
	if p.IsConnected() {
		return nil
	}

	// Start connect attempt. With ConnectRetry(true), it may keep retrying internally.
	token := p.client.Connect()

	// Wait in a ctx/stop-aware loop.
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			// OnConnectHandler sets connected=true.
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return fmt.Errorf("publisher stopped")
		default:
		}
	}
}

// OnReading publishes one decoded reading to
// <prefix>/<device-type>/<address>. Implements sense.Sink.
func (p *Publisher) OnReading(address string, entry sense.HistoryEntry) error {
	if entry.Reading == nil {
		return nil
	}
	if !p.IsConnected() {
		return fmt.Errorf("mqtt publisher not connected")
	}

	deviceType := entry.Reading.Type().String()
	topic := fmt.Sprintf("%s/%s/%s", p.topicPrefix, deviceType, topicSegment(address))

	data, err := json.Marshal(readingMessage{
		Address:    address,
		DeviceType: deviceType,
		At:         entry.At,
		Reading:    entry.Reading,
	})
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if token.Error() != nil {
		p.logger.Error("failed to publish reading", "topic", topic, "error", token.Error())
		return fmt.Errorf("publish reading: %w", token.Error())
	}

	p.logger.Debug("published reading", "topic", topic, "addr", address)
	return nil
}

// IsConnected returns whether the publisher is connected.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the publisher and closes the broker connection.
// Idempotent; after Disconnect, Connect() returns "publisher stopped".
func (p *Publisher) Disconnect() {
	// Signal shutdown once (unblocks any Connect loops).
	p.stopOnce.Do(func() { close(p.stopCh) })

	if p.client != nil {
		// Even if already disconnected, this is safe.
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	p.logger.Info("mqtt disconnected")
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// topicSegment keeps hardware addresses valid as a single topic level.
func topicSegment(address string) string {
	return strings.ReplaceAll(address, "/", "-")
}
