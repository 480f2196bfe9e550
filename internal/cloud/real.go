package cloud

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/amanpro/barn-node/internal/core"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// commandQueueSize bounds pending remote commands between loop
	// iterations; the loop drains it every tick, so it only fills if the
	// loop stalls.
	commandQueueSize = 16

	// echoBufferSize bounds state echoes held while disconnected.
	echoBufferSize = 64
)

// RealChannel talks to an actual MQTT broker.
type RealChannel struct {
	client   paho.Client
	deviceID string
	log      *zap.Logger
	commands chan Command

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealChannel connects to the broker and subscribes to the device's
// command topics. Subscriptions are re-established on every reconnect, and
// state echoes buffered while offline are replayed.
func NewRealChannel(broker, deviceID string, log *zap.Logger) (*RealChannel, error) {
	c := &RealChannel{
		deviceID: deviceID,
		log:      log,
		commands: make(chan Command, commandQueueSize),
		buffer:   newRingBuffer(echoBufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("barn-node-" + deviceID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn("mqtt connection lost", zap.Error(err))
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect resubscribes and replays buffered echoes. Runs on the paho
// goroutine for initial connect and every reconnect.
func (c *RealChannel) onConnect(client paho.Client) {
	topics := make(map[string]byte, len(core.Actuators)+1)
	for _, a := range core.Actuators {
		topics[CommandTopic(c.deviceID, a)] = 1
	}
	topics[IntervalCommandTopic(c.deviceID)] = 1

	token := client.SubscribeMultiple(topics, c.handleMessage)
	if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
		c.log.Error("mqtt subscribe failed", zap.Error(token.Error()))
		return
	}
	c.log.Info("mqtt connected, command topics subscribed", zap.Int("topics", len(topics)))

	c.mu.Lock()
	pending := c.buffer.drainAll()
	c.mu.Unlock()
	for _, msg := range pending {
		token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			c.log.Warn("replaying buffered echo failed", zap.String("topic", msg.topic), zap.Error(token.Error()))
		}
	}
	if len(pending) > 0 {
		c.log.Info("replayed buffered state echoes", zap.Int("count", len(pending)))
	}
}

// handleMessage parses an incoming command and queues it for the control
// loop. Malformed payloads are logged and dropped, never applied.
func (c *RealChannel) handleMessage(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(c.deviceID, msg.Topic(), msg.Payload())
	if err != nil {
		c.log.Warn("ignoring malformed command",
			zap.String("topic", msg.Topic()), zap.ByteString("payload", msg.Payload()), zap.Error(err))
		return
	}
	select {
	case c.commands <- cmd:
	default:
		c.log.Warn("command queue full, dropping command", zap.String("topic", msg.Topic()))
	}
}

// Commands delivers parsed remote commands.
func (c *RealChannel) Commands() <-chan Command {
	return c.commands
}

// PublishState echoes a commanded actuator state, retained so late
// subscribers see the current value. While disconnected the echo is buffered
// and replayed on reconnect.
func (c *RealChannel) PublishState(a core.Actuator, on bool) error {
	return c.publish(StateTopic(c.deviceID, a), FormatState(on))
}

// PublishInterval echoes the configured flush interval, retained.
func (c *RealChannel) PublishInterval(minutes int) error {
	return c.publish(IntervalStateTopic(c.deviceID), []byte(fmt.Sprintf("%d", minutes)))
}

func (c *RealChannel) publish(topic string, payload []byte) error {
	if !c.client.IsConnected() {
		c.mu.Lock()
		dropped := c.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: 1, retained: true})
		n := c.buffer.len()
		c.mu.Unlock()
		if dropped {
			c.log.Warn("echo buffer full, dropping oldest", zap.Int("capacity", echoBufferSize))
		}
		c.log.Debug("broker down, buffered state echo", zap.String("topic", topic), zap.Int("buffered", n))
		return nil
	}

	token := c.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the broker link is up.
func (c *RealChannel) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *RealChannel) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
