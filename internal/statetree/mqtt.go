package statetree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions configures the MQTT state tree.
type MQTTOptions struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Prefix         string
	QoS            byte
	ConnectTimeout time.Duration

	// WillID is published with WillValue (ack=true) when the connection drops.
	WillID    string
	WillValue any
}

// MQTTStore maps state ids to retained MQTT topics under a prefix.
type MQTTStore struct {
	client mqtt.Client
	opts   MQTTOptions
	logger *slog.Logger

	mu      sync.RWMutex
	handler WriteHandler
}

// NewMQTTStore creates the store; call Connect before use.
func NewMQTTStore(opts MQTTOptions, logger *slog.Logger) (*MQTTStore, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	s := &MQTTStore{opts: opts, logger: logger}

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}
	co.SetKeepAlive(30 * time.Second)
	co.SetPingTimeout(5 * time.Second)
	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetOrderMatters(false)

	if opts.WillID != "" {
		will, err := EncodePayload(State{Val: opts.WillValue, Ack: true, Ts: time.Now()})
		if err != nil {
			return nil, fmt.Errorf("encode will: %w", err)
		}
		co.SetBinaryWill(Topic(opts.Prefix, opts.WillID), will, opts.QoS, true)
	}

	// subscriptions are renewed on every (re)connect
	co.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT connected", "broker", opts.Broker)
		s.subscribe(c)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "broker", opts.Broker, "error", err)
	})

	s.client = mqtt.NewClient(co)
	return s, nil
}

// Connect opens the broker connection.
func (s *MQTTStore) Connect(ctx context.Context) error {
	token := s.client.Connect()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.opts.ConnectTimeout):
		return fmt.Errorf("connect to %s: timeout after %s", s.opts.Broker, s.opts.ConnectTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", s.opts.Broker, err)
	}
	return nil
}

// SetState implements Store. Values are published retained.
func (s *MQTTStore) SetState(ctx context.Context, id string, val any, ack bool) error {
	data, err := EncodePayload(State{Val: val, Ack: ack, Ts: time.Now()})
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	topic := Topic(s.opts.Prefix, id)
	token := s.client.Publish(topic, s.opts.QoS, true, data)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := token.Error(); err != nil {
		s.logger.Error("Failed to publish", "topic", topic, "error", err)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers h for writes on command topics.
func (s *MQTTStore) Subscribe(h WriteHandler) error {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()

	if !s.client.IsConnectionOpen() {
		// OnConnect will subscribe
		return nil
	}
	return s.subscribe(s.client)
}

// Close disconnects from the broker.
func (s *MQTTStore) Close() {
	s.client.Disconnect(250)
}

// CommandFilters returns the topic filters covering command addresses.
func (s *MQTTStore) CommandFilters() []string {
	return []string{
		Topic(s.opts.Prefix, "commands") + "/+",
		Topic(s.opts.Prefix, "circuits") + "/+/commands/+",
	}
}

func (s *MQTTStore) subscribe(c mqtt.Client) error {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h == nil {
		return nil
	}

	filters := make(map[string]byte)
	for _, f := range s.CommandFilters() {
		filters[f] = s.opts.QoS
	}

	token := c.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload(), msg.Retained())
	})
	if !token.WaitTimeout(s.opts.ConnectTimeout) {
		err := errors.New("subscribe timeout")
		s.logger.Error("Failed to subscribe", "error", err)
		return err
	}
	if err := token.Error(); err != nil {
		s.logger.Error("Failed to subscribe", "error", err)
		return fmt.Errorf("subscribe: %w", err)
	}

	s.logger.Debug("Subscribed to command topics", "filters", s.CommandFilters())
	return nil
}

// handleMessage drops retained messages: a command left on the broker must not
// be dispatched again on every (re)subscribe.
func (s *MQTTStore) handleMessage(topic string, data []byte, retained bool) {
	if retained {
		s.logger.Debug("Ignoring retained command", "topic", topic)
		return
	}

	id, ok := ID(s.opts.Prefix, topic)
	if !ok {
		s.logger.Debug("Ignoring message outside prefix", "topic", topic)
		return
	}

	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	if h == nil {
		return
	}

	h(id, DecodePayload(data))
}
