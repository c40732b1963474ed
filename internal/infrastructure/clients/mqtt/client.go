package mqtt

import (
	"context"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rescuenet/dispatch/pkg/config"
	"github.com/rescuenet/dispatch/pkg/retry"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second

	// QoS 1 so the broker delivers every state change at least once
	qosAtLeastOnce = byte(1)
)

// Client wraps a paho MQTT client
type Client struct {
	client paho.Client
	cfg    *config.MQTTConfig
}

// NewClient creates a new MQTT client and connects with exponential backoff retry
func NewClient(cfg *config.MQTTConfig) (*Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8]))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(true)

	client := paho.NewClient(opts)

	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"MQTT",
		func() error {
			token := client.Connect()
			if !token.WaitTimeout(connectTimeout) {
				return fmt.Errorf("timed out connecting to %s", cfg.BrokerURL)
			}
			return token.Error()
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("MQTT connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker after retries: %w", err)
	}

	log.Printf("Successfully connected to MQTT broker at %s", cfg.BrokerURL)
	return &Client{client: client, cfg: cfg}, nil
}

// Publish sends a payload to a topic and waits for the broker to accept it.
// Waiting on the token keeps per-topic ordering intact.
func (c *Client) Publish(topic string, payload []byte, retain bool) error {
	token := c.client.Publish(topic, qosAtLeastOnce, retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	return token.Error()
}

// Close disconnects from the broker
func (c *Client) Close() {
	c.client.Disconnect(250)
}
