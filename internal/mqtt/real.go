package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/paulvha/wheel-of-fortune/internal/game"
)

const (
	defaultConnectTimeout = 10 * time.Second
	publishTimeout        = 5 * time.Second
	queueLen              = 16
)

var errClosed = errors.New("mqtt: publisher closed")

// Options configure a RealPublisher.
type Options struct {
	Broker         string
	ClientID       string
	Topic          string        // prefix; DefaultTopic when empty
	BufferLen      int           // messages kept while disconnected
	ConnectTimeout time.Duration // initial wait; 10s when zero

	// OnConnectionChange, if set, is told about every connect and loss.
	OnConnectionChange func(connected bool)

	Log *zap.SugaredLogger
}

// RealPublisher publishes to an actual MQTT broker. Publishing never blocks
// the caller: messages go through a small queue to a sender goroutine, and
// into a ring buffer while the broker is unreachable. The buffer is replayed
// on every (re)connect.
type RealPublisher struct {
	client   paho.Client
	topic    string
	log      *zap.SugaredLogger
	onChange func(bool)

	mu       sync.Mutex
	buffer   *ringBuffer
	closed   bool
	connects int

	queue chan bufferedMsg
	wg    sync.WaitGroup
}

// NewRealPublisher creates a publisher for the given broker. An unreachable
// broker is not an error: the client keeps retrying and messages are
// buffered. A rejected connection is.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.Topic == "" {
		o.Topic = DefaultTopic
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}

	p := &RealPublisher{
		topic:    o.Topic,
		log:      o.Log,
		onChange: o.OnConnectionChange,
		buffer:   newRingBuffer(o.BufferLen),
		queue:    make(chan bufferedMsg, queueLen),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     EventOffline,
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(SystemTopic(o.Topic), string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)
	p.client = paho.NewClient(opts)

	p.wg.Add(1)
	go p.sender()

	token := p.client.Connect()
	if !token.WaitTimeout(o.ConnectTimeout) {
		p.log.Warnw("broker not reachable yet, buffering messages", "broker", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		p.Close()
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// PublishRound queues a finished round.
func (p *RealPublisher) PublishRound(r game.RoundResult) error {
	payload, err := FormatRoundPayload(r)
	if err != nil {
		return fmt.Errorf("format round payload: %w", err)
	}
	// QoS 1 (at-least-once), not retained
	return p.enqueue(bufferedMsg{topic: RoundTopic(p.topic), payload: payload, qos: 1})
}

// PublishSystem queues a system lifecycle event.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.enqueue(bufferedMsg{topic: SystemTopic(p.topic), payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// Close sends what is already queued, then disconnects from the broker.
// Buffered messages are dropped.
func (p *RealPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	dropped := p.buffer.len()
	p.mu.Unlock()

	p.wg.Wait()
	if dropped > 0 {
		p.log.Warnw("dropping buffered messages", "count", dropped)
	}
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) enqueue(msg bufferedMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errClosed
	}
	if !p.client.IsConnectionOpen() {
		p.bufferLocked(msg)
		return nil
	}
	select {
	case p.queue <- msg:
	default:
		p.bufferLocked(msg)
	}
	return nil
}

func (p *RealPublisher) bufferLocked(msg bufferedMsg) {
	if p.buffer.push(msg) {
		p.log.Warnw("buffer full, dropping oldest", "capacity", p.buffer.capacity)
	}
}

func (p *RealPublisher) sender() {
	defer p.wg.Done()
	for msg := range p.queue {
		token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		var err error
		if !token.WaitTimeout(publishTimeout) {
			err = errors.New("publish timeout")
		} else {
			err = token.Error()
		}
		if err != nil {
			p.log.Warnw("publish failed, buffering", "topic", msg.topic, "error", err)
			p.mu.Lock()
			p.bufferLocked(msg)
			p.mu.Unlock()
		}
	}
}

func (p *RealPublisher) onConnect(paho.Client) {
	p.log.Infow("connected to broker")
	if p.onChange != nil {
		p.onChange(true)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.connects++
	if p.connects > 1 {
		p.announceLocked()
	}
	pending := p.buffer.drainAll()
	for i, msg := range pending {
		select {
		case p.queue <- msg:
		default:
			// Sender is busy; keep the rest for the next connect.
			for _, rest := range pending[i:] {
				p.bufferLocked(rest)
			}
			return
		}
	}
	if len(pending) > 0 {
		p.log.Infow("replayed buffered messages", "count", len(pending))
	}
}

// announceLocked buffers a RECONNECTED event so it goes out with the replay.
func (p *RealPublisher) announceLocked() {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventReconnected})
	if err != nil {
		return
	}
	p.bufferLocked(bufferedMsg{topic: SystemTopic(p.topic), payload: payload, qos: 1})
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.log.Warnw("connection to broker lost", "error", err)
	if p.onChange != nil {
		p.onChange(false)
	}
}
