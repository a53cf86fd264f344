package datasync

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultMaxPending = 8

// CloseTimeout bounds the wait for the link release in Close.
const CloseTimeout = 2 * time.Second

type Options struct {
	// TopicPrefix is prepended to every path to build the transport topic.
	TopicPrefix string
	// MaxPending bounds the number of paths queued while not connected.
	MaxPending int
	Codec      Codec
}

// Channel is a path-addressed publish/subscribe link to one paired peer.
//
// Transport work runs in goroutines; every completion is handed to post,
// which must run it on the engine loop. All methods must be called from
// that loop, so the channel holds no lock.
type Channel struct {
	transport Transport
	post      func(func())
	options   Options
	newId     func() string

	state         ConnectionState
	attempt       uint64
	cancelConnect context.CancelFunc
	link          Link
	// ready is set once the link acknowledged every subscription.
	ready bool

	subscriptions map[string]Handler
	pending       map[string]Request
	pendingOrder  []string

	observers []func(ConnectionState)
	stats     Stats
}

func NewChannel(transport Transport, post func(func()), options Options) *Channel {
	if options.MaxPending <= 0 {
		options.MaxPending = DefaultMaxPending
	}
	if options.Codec == nil {
		options.Codec = MsgpackCodec{}
	}
	return &Channel{
		transport:     transport,
		post:          post,
		options:       options,
		newId:         uuid.NewString,
		subscriptions: make(map[string]Handler),
		pending:       make(map[string]Request),
	}
}

func (c *Channel) State() ConnectionState {
	return c.state
}

// Ready tells whether requests are sent right away. A connected channel is
// ready once its inbound subscriptions are in place.
func (c *Channel) Ready() bool {
	return c.state == CONNECTED && c.ready
}

func (c *Channel) Stats() Stats {
	stats := c.stats
	stats.State = c.state
	stats.Pending = len(c.pendingOrder)
	return stats
}

// OnStateChange registers an observer of connection state transitions.
func (c *Channel) OnStateChange(observer func(ConnectionState)) {
	c.observers = append(c.observers, observer)
}

func (c *Channel) setState(state ConnectionState) {
	if c.state == state {
		return
	}
	logrus.Debugf("Sync channel %s -> %s", c.state, state)
	c.state = state
	for _, observer := range c.observers {
		observer(state)
	}
}

func (c *Channel) topic(path string) string {
	return c.options.TopicPrefix + path
}

// Connect starts a handshake unless one is running or the link is up.
// A failed handshake is not retried.
func (c *Channel) Connect() {
	if c.state != DISCONNECTED {
		logrus.Debugf("Sync channel already %s", c.state)
		return
	}

	c.attempt++
	attempt := c.attempt
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelConnect = cancel
	c.stats.Handshakes++
	c.setState(CONNECTING)

	logrus.Infof("Connecting sync channel (attempt %d)", attempt)
	go func() {
		link, err := c.transport.Dial(ctx, func(lostErr error) {
			c.post(func() {
				c.connectionLost(attempt, lostErr)
			})
		})
		c.post(func() {
			c.connectResult(attempt, link, err)
		})
	}()
}

func (c *Channel) connectResult(attempt uint64, link Link, err error) {
	if attempt != c.attempt || c.state != CONNECTING {
		logrus.Debugf("Discard handshake result of cancelled attempt %d", attempt)
		if link != nil {
			go link.Close()
		}
		return
	}
	c.cancelConnect = nil

	if err != nil {
		logrus.Warnf("Sync channel connection failed, waiting for next visibility change: %v", err)
		c.setState(DISCONNECTED)
		return
	}

	logrus.Infof("Sync channel connected")
	c.link = link
	c.ready = false
	c.setState(CONNECTED)

	// Replies to the queued requests must find their subscription in place.
	var topics []string
	for path := range c.subscriptions {
		topics = append(topics, c.topic(path))
	}
	go func() {
		for _, topic := range topics {
			topic := topic
			if err := link.Subscribe(topic, c.messageHandler(attempt)); err != nil {
				c.post(func() {
					logrus.Warnf("Unable to subscribe %s: %v", topic, err)
				})
			}
		}
		c.post(func() {
			c.subscribed(attempt)
		})
	}()
}

func (c *Channel) subscribed(attempt uint64) {
	if attempt != c.attempt || c.state != CONNECTED {
		logrus.Debugf("Discard subscriptions of closed attempt %d", attempt)
		return
	}
	c.ready = true
	c.flush()
}

func (c *Channel) messageHandler(attempt uint64) func(topic string, data []byte) {
	return func(topic string, data []byte) {
		c.post(func() {
			c.onMessage(attempt, topic, data)
		})
	}
}

func (c *Channel) connectionLost(attempt uint64, err error) {
	if attempt != c.attempt || c.state != CONNECTED {
		return
	}
	logrus.Warnf("Sync channel connection lost, waiting for next visibility change: %v", err)
	link := c.link
	c.link = nil
	c.attempt++
	go link.Close()
	c.setState(DISCONNECTED)
}

// Disconnect releases the link or aborts the running handshake.
func (c *Channel) Disconnect() {
	c.disconnect()
}

// disconnect returns a channel closed once the link is released, or nil when
// there was no link.
func (c *Channel) disconnect() <-chan struct{} {
	var released chan struct{}
	switch c.state {
	case CONNECTING:
		logrus.Infof("Cancel sync channel handshake")
		if c.cancelConnect != nil {
			c.cancelConnect()
			c.cancelConnect = nil
		}
	case CONNECTED:
		logrus.Infof("Disconnect sync channel")
		link := c.link
		var topics []string
		for path := range c.subscriptions {
			topics = append(topics, c.topic(path))
		}
		released = make(chan struct{})
		go func() {
			defer close(released)
			if len(topics) > 0 {
				if err := link.Unsubscribe(topics...); err != nil {
					logrus.Debugf("Unable to unsubscribe %v: %v", topics, err)
				}
			}
			link.Close()
		}()
		c.link = nil
	default:
		return nil
	}
	c.attempt++
	c.setState(DISCONNECTED)
	return released
}

// Close disconnects, forgets every queued request and waits, up to
// CloseTimeout, for the link to be released.
func (c *Channel) Close() {
	released := c.disconnect()
	c.pending = make(map[string]Request)
	c.pendingOrder = nil

	if released == nil {
		return
	}
	select {
	case <-released:
		logrus.Debugf("Sync channel link released")
	case <-time.After(CloseTimeout):
		logrus.Warnf("Sync channel link not released after %v", CloseTimeout)
	}
}

// Subscribe registers the handler of inbound messages for path.
func (c *Channel) Subscribe(path string, handler Handler) {
	c.subscriptions[path] = handler
	if c.state == CONNECTED {
		c.subscribe(path)
	}
}

func (c *Channel) subscribe(path string) {
	link := c.link
	attempt := c.attempt
	topic := c.topic(path)
	go func() {
		err := link.Subscribe(topic, c.messageHandler(attempt))
		if err != nil {
			c.post(func() {
				logrus.Warnf("Unable to subscribe %s: %v", topic, err)
			})
		}
	}()
}

// Publish sends a request to path with a fresh idempotency token, or queues
// it until the link is up and subscribed. A queued request replaces any earlier unsent one
// on the same path. It returns the token.
func (c *Channel) Publish(path string, payload Payload) string {
	request := Request{Path: path, Payload: payload, RequestId: c.newId()}

	if c.Ready() {
		c.send(request)
		return request.RequestId
	}

	if _, ok := c.pending[path]; ok {
		c.stats.Coalesced++
		logrus.Debugf("Coalesce pending request on %s", path)
	} else {
		if len(c.pendingOrder) >= c.options.MaxPending {
			evicted := c.pendingOrder[0]
			c.pendingOrder = c.pendingOrder[1:]
			delete(c.pending, evicted)
			c.stats.Evicted++
			logrus.Warnf("Sync queue full, drop pending request on %s", evicted)
		}
		c.pendingOrder = append(c.pendingOrder, path)
	}
	c.pending[path] = request
	return request.RequestId
}

func (c *Channel) flush() {
	order := c.pendingOrder
	pending := c.pending
	c.pendingOrder = nil
	c.pending = make(map[string]Request)

	for _, path := range order {
		c.send(pending[path])
	}
}

func (c *Channel) send(request Request) {
	wire := make(Payload, len(request.Payload)+1)
	for key, value := range request.Payload {
		wire[key] = value
	}
	wire[KeyRequestId] = request.RequestId

	data, err := c.options.Codec.Encode(wire)
	if err != nil {
		c.stats.Failed++
		logrus.Warnf("Unable to encode request on %s: %v", request.Path, err)
		return
	}

	link := c.link
	topic := c.topic(request.Path)
	go func() {
		err := link.Publish(topic, data)
		c.post(func() {
			c.publishResult(request, err)
		})
	}()
}

func (c *Channel) publishResult(request Request, err error) {
	if err != nil {
		c.stats.Failed++
		logrus.Warnf("Failed to publish request %s on %s: %v", request.RequestId, request.Path, err)
		return
	}
	c.stats.Sent++
	logrus.Debugf("Request %s on %s published", request.RequestId, request.Path)
}

func (c *Channel) onMessage(attempt uint64, topic string, data []byte) {
	if attempt != c.attempt || c.state != CONNECTED {
		c.stats.Dropped++
		logrus.Debugf("Drop message on %s received after disconnection", topic)
		return
	}

	if !strings.HasPrefix(topic, c.options.TopicPrefix) {
		c.stats.Dropped++
		return
	}
	path := strings.TrimPrefix(topic, c.options.TopicPrefix)

	handler, ok := c.subscriptions[path]
	if !ok {
		c.stats.Dropped++
		logrus.Debugf("Drop message on unknown path %s", path)
		return
	}

	payload, err := c.options.Codec.Decode(data)
	if err != nil {
		c.stats.Dropped++
		logrus.Warnf("Drop malformed message on %s: %v", path, err)
		return
	}

	c.stats.Received++
	handler(Message{Path: path, Payload: payload})
}
