// Package mqtt publishes decoded annotations to a mqtt broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
	"tslad/pkg/annotation"
)

// quiesce is the specified number of milliseconds to wait for existing work to be completed.
const (
	quiesce = 250
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message

	// wg tracks the Service loop started by Start.
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C: make(chan Message, 64),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().AddBroker(broker).SetClientID(fmt.Sprintf("tslad-%d", rand.Int31()))
	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// Enabled reports whether a broker is configured.
func (m *Handler) Enabled() bool {
	return m.handler != nil
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Start runs Service in the background, Close waits until it has drained C.
func (m *Handler) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Service()
	}()
}

// Close stops accepting messages, waits until the queued messages are handed to the broker
// and disconnects. No Sink of m must be used after Close.
func (m *Handler) Close() error {
	m.closeOnce.Do(func() {
		close(m.C)
	})
	m.wg.Wait()
	return m.Disconnect()
}

// Service listen to a message on the channel C and send the message to mqtt.
// If no handler or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	for d := range m.C {
		if m.handler == nil || d.Topic == "" {
			continue
		}

		if !m.handler.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(d.Payload), d.Topic)
		t := m.handler.Publish(d.Topic, d.Qos, d.Retained, d.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(d.Topic)
	}
}

// Payload is the mqtt message of a single annotation.
type Payload struct {
	Run string `json:"run"`
	annotation.Annotation
}

// Sink returns an annotation sink sending every annotation of run to topic.
// Messages are kept in order because they are published by the single Service loop.
func (m *Handler) Sink(topic, run string) annotation.Sink {
	return annotation.SinkFunc(func(a annotation.Annotation) error {
		b, err := json.Marshal(Payload{Run: run, Annotation: a})
		if err != nil {
			return fmt.Errorf("mqtt marshal: %w", err)
		}

		m.C <- Message{
			Qos:     0,
			Topic:   topic,
			Payload: b,
		}
		return nil
	})
}
