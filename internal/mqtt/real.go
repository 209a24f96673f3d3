package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/stocktank/internal/logic"
)

const (
	clientID       = "stocktank"
	publishTimeout = 5 * time.Second

	// bufferCapacity bounds how many messages are held while the broker
	// is unreachable. At this controller's event rate that covers days
	// of outage.
	bufferCapacity = 256
)

// RealPublisher publishes to an actual MQTT broker. Construction never
// fails: the paho client retries the initial connect in the background,
// and messages published while disconnected are buffered and replayed
// on (re)connect. The broker holds a retained OFFLINE will for the
// system topic in case the controller dies without saying goodbye.
type RealPublisher struct {
	client paho.Client

	mu            sync.Mutex
	buffer        *ringBuffer
	everConnected bool
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{
		buffer: newRingBuffer(bufferCapacity),
	}

	will, err := FormatSystemPayload(SystemEvent{Event: "OFFLINE"})
	if err != nil {
		// Static payload, cannot fail; guard against a refactor
		// breaking it silently.
		panic(fmt.Sprintf("mqtt: format will payload: %v", err))
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	log.Printf("mqtt: connecting to %s", broker)
	p.client.Connect()

	return p
}

// onConnect drains the offline buffer. After the first connect it also
// publishes a retained RECONNECTED event, which overwrites the OFFLINE
// will the broker may have fired while we were away.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	first := !p.everConnected
	p.everConnected = true
	backlog := p.buffer.drainAll()
	p.mu.Unlock()

	if first {
		log.Printf("mqtt: connected")
	} else {
		log.Printf("mqtt: reconnected, replaying %d buffered messages", len(backlog))
	}

	for _, m := range backlog {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("mqtt: replay timeout, remaining backlog dropped")
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay failed: %v", err)
			return
		}
	}

	if !first {
		payload, err := FormatSystemPayload(SystemEvent{
			Timestamp: time.Now(),
			Event:     "RECONNECTED",
		})
		if err == nil {
			client.Publish(TopicSystem, 1, true, payload)
		}
	}
}

// Publish sends a tank event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		pending := p.buffer.len()
		p.mu.Unlock()
		log.Printf("mqtt: not connected, buffered message (%d pending)", pending)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
