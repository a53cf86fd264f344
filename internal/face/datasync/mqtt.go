package datasync

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

type MQTTConfig struct {
	Broker         string
	ClientId       string
	Username       string
	Password       string
	Qos            byte
	ConnectTimeout time.Duration
}

// MQTTTransport reaches the companion device through an MQTT broker. The
// client never reconnects by itself: reconnection is driven by the engine.
type MQTTTransport struct {
	config MQTTConfig
}

func NewMQTTTransport(config MQTTConfig) *MQTTTransport {
	return &MQTTTransport{config: config}
}

func (t *MQTTTransport) clientOptions(onLost func(err error)) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(t.config.Broker)
	opts.SetClientID(t.config.ClientId)
	if t.config.Username != "" {
		opts.SetUsername(t.config.Username)
		opts.SetPassword(t.config.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	if t.config.ConnectTimeout > 0 {
		opts.SetConnectTimeout(t.config.ConnectTimeout)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		onLost(err)
	})
	return opts
}

func (t *MQTTTransport) Dial(ctx context.Context, onLost func(err error)) (Link, error) {
	client := mqtt.NewClient(t.clientOptions(onLost))

	logrus.Debugf("Connecting to mqtt broker %s as %s", t.config.Broker, t.config.ClientId)
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connection to %s cancelled: %w", t.config.Broker, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection to %s failed: %w", t.config.Broker, err)
	}

	return &mqttLink{client: client, qos: t.config.Qos}, nil
}

type mqttLink struct {
	client mqtt.Client
	qos    byte
}

func (l *mqttLink) Subscribe(topic string, onMessage func(topic string, payload []byte)) error {
	token := l.client.Subscribe(topic, l.qos, func(_ mqtt.Client, msg mqtt.Message) {
		onMessage(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe %s failed: %w", topic, err)
	}
	return nil
}

func (l *mqttLink) Unsubscribe(topics ...string) error {
	token := l.client.Unsubscribe(topics...)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt unsubscribe failed: %w", err)
	}
	return nil
}

func (l *mqttLink) Publish(topic string, payload []byte) error {
	token := l.client.Publish(topic, l.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s failed: %w", topic, err)
	}
	return nil
}

func (l *mqttLink) Close() {
	if l.client.IsConnectionOpen() {
		l.client.Disconnect(250)
	}
}
