// Package cloud is the remote command/telemetry channel: actuator commands
// and the flush interval arrive as MQTT messages, and local state changes are
// echoed back on retained state topics so the remote mirror stays in sync
// (e.g. after a pump auto-off). Commands are queued on a channel and drained
// by the control loop, never applied from the MQTT goroutine.
package cloud

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amanpro/barn-node/internal/core"
)

// Channel is the command/telemetry link to the remote service.
type Channel interface {
	// Commands delivers parsed remote commands. The control loop drains it
	// at the top of each iteration.
	Commands() <-chan Command

	// PublishState echoes a commanded actuator state (retained).
	PublishState(a core.Actuator, on bool) error

	// PublishInterval echoes the configured flush interval (retained).
	PublishInterval(minutes int) error

	// IsConnected reports whether the link is up.
	IsConnected() bool

	// Close disconnects from the remote service.
	Close() error
}

// Command is one remote write: either an actuator state or the flush
// interval.
type Command struct {
	// Actuator is set for actuator commands; empty for interval commands.
	Actuator core.Actuator
	On       bool

	// SetInterval is true for flush-interval commands.
	SetInterval bool
	// IntervalMinutes is the new interval; 0 disables the periodic flush.
	IntervalMinutes int
}

// Topic layout under the device root, e.g. barn/RAB-001/cmd/pump.
const (
	topicCmd           = "cmd"
	topicState         = "state"
	TopicFlushInterval = "flush_interval"
)

// CommandTopic returns the command topic for an actuator.
func CommandTopic(deviceID string, a core.Actuator) string {
	return fmt.Sprintf("barn/%s/%s/%s", deviceID, topicCmd, a)
}

// IntervalCommandTopic returns the flush-interval command topic.
func IntervalCommandTopic(deviceID string) string {
	return fmt.Sprintf("barn/%s/%s/%s", deviceID, topicCmd, TopicFlushInterval)
}

// StateTopic returns the retained state-echo topic for an actuator.
func StateTopic(deviceID string, a core.Actuator) string {
	return fmt.Sprintf("barn/%s/%s/%s", deviceID, topicState, a)
}

// IntervalStateTopic returns the retained flush-interval echo topic.
func IntervalStateTopic(deviceID string) string {
	return fmt.Sprintf("barn/%s/%s/%s", deviceID, topicState, TopicFlushInterval)
}

// ParseCommand turns a command topic and payload into a Command. The topic
// must be one of the device's command topics.
func ParseCommand(deviceID, topic string, payload []byte) (Command, error) {
	prefix := fmt.Sprintf("barn/%s/%s/", deviceID, topicCmd)
	target, ok := strings.CutPrefix(topic, prefix)
	if !ok {
		return Command{}, fmt.Errorf("unexpected topic %q", topic)
	}

	body := strings.TrimSpace(string(payload))
	if target == TopicFlushInterval {
		minutes, err := strconv.Atoi(body)
		if err != nil {
			return Command{}, fmt.Errorf("flush interval %q: %w", body, err)
		}
		if minutes < 0 {
			return Command{}, fmt.Errorf("flush interval %d is negative", minutes)
		}
		return Command{SetInterval: true, IntervalMinutes: minutes}, nil
	}

	a := core.Actuator(target)
	switch a {
	case core.ActuatorPump, core.ActuatorSiren, core.ActuatorCamera, core.ActuatorAux:
	default:
		return Command{}, fmt.Errorf("unknown actuator topic %q", target)
	}

	on, err := parseBool(body)
	if err != nil {
		return Command{}, fmt.Errorf("actuator %s payload %q: %w", a, body, err)
	}
	return Command{Actuator: a, On: on}, nil
}

// parseBool accepts the payload forms remote dashboards send.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}

// FormatState renders the retained state payload.
func FormatState(on bool) []byte {
	if on {
		return []byte("1")
	}
	return []byte("0")
}
