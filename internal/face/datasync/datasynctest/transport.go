// Package datasynctest provides an in-memory transport whose handshakes and
// deliveries are driven by the test.
package datasynctest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jypelle/sunface/internal/face/datasync"
)

var ErrLost = errors.New("peer lost")

type Transport struct {
	lock          sync.Mutex
	dials         chan *Dial
	dialCount     int
	subscribeGate chan struct{}
}

func NewTransport() *Transport {
	return &Transport{dials: make(chan *Dial, 16)}
}

type dialResult struct {
	link *Link
	err  error
}

// Dial is a handshake waiting for the test to resolve it.
type Dial struct {
	transport *Transport
	ctx       context.Context
	onLost    func(error)
	result    chan dialResult
}

func (t *Transport) Dial(ctx context.Context, onLost func(error)) (datasync.Link, error) {
	d := &Dial{transport: t, ctx: ctx, onLost: onLost, result: make(chan dialResult, 1)}

	t.lock.Lock()
	t.dialCount++
	t.lock.Unlock()
	t.dials <- d

	select {
	case r := <-d.result:
		if r.err != nil {
			return nil, r.err
		}
		return r.link, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transport) DialCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.dialCount
}

// HoldSubscribes makes every Subscribe on links established from now on
// block until release is called.
func (t *Transport) HoldSubscribes() (release func()) {
	gate := make(chan struct{})
	t.lock.Lock()
	t.subscribeGate = gate
	t.lock.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// NextDial waits for the channel to start a handshake.
func (t *Transport) NextDial(timeout time.Duration) *Dial {
	select {
	case d := <-t.dials:
		return d
	case <-time.After(timeout):
		return nil
	}
}

// Succeed completes the handshake and returns the established link.
func (d *Dial) Succeed() *Link {
	d.transport.lock.Lock()
	gate := d.transport.subscribeGate
	d.transport.lock.Unlock()

	link := &Link{onLost: d.onLost, subscribeGate: gate, handlers: make(map[string]func(string, []byte))}
	d.result <- dialResult{link: link}
	return link
}

func (d *Dial) Fail(err error) {
	d.result <- dialResult{err: err}
}

func (d *Dial) Cancelled() bool {
	return d.ctx.Err() != nil
}

type Published struct {
	Topic   string
	Payload []byte
}

type Link struct {
	lock          sync.Mutex
	onLost        func(error)
	subscribeGate chan struct{}
	handlers      map[string]func(string, []byte)
	published     []Published
	unsubscribed  []string
	operations    []string
	closed        bool

	PublishErr error
}

func (l *Link) Subscribe(topic string, onMessage func(topic string, payload []byte)) error {
	if l.subscribeGate != nil {
		<-l.subscribeGate
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.handlers[topic] = onMessage
	l.operations = append(l.operations, "subscribe "+topic)
	return nil
}

func (l *Link) Unsubscribe(topics ...string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, topic := range topics {
		delete(l.handlers, topic)
		l.unsubscribed = append(l.unsubscribed, topic)
	}
	return nil
}

func (l *Link) Publish(topic string, payload []byte) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.PublishErr != nil {
		return l.PublishErr
	}
	l.published = append(l.published, Published{Topic: topic, Payload: payload})
	l.operations = append(l.operations, "publish "+topic)
	return nil
}

func (l *Link) Close() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.closed = true
}

func (l *Link) SetPublishErr(err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.PublishErr = err
}

func (l *Link) Published() []Published {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]Published, len(l.published))
	copy(out, l.published)
	return out
}

// Operations lists the acknowledged subscribes and publishes in order, as
// "subscribe <topic>" and "publish <topic>".
func (l *Link) Operations() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]string, len(l.operations))
	copy(out, l.operations)
	return out
}

func (l *Link) Subscribed(topic string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	_, ok := l.handlers[topic]
	return ok
}

func (l *Link) Unsubscribed() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]string, len(l.unsubscribed))
	copy(out, l.unsubscribed)
	return out
}

func (l *Link) Closed() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.closed
}

// Deliver pushes an inbound message as the peer would. It returns false when
// nothing is subscribed on topic.
func (l *Link) Deliver(topic string, payload []byte) bool {
	l.lock.Lock()
	handler, ok := l.handlers[topic]
	l.lock.Unlock()
	if !ok {
		return false
	}
	handler(topic, payload)
	return true
}

// DeliverAny pushes a message on a topic without checking subscriptions,
// like a broker wildcard would.
func (l *Link) DeliverAny(topic string, payload []byte) {
	l.lock.Lock()
	var handler func(string, []byte)
	for _, h := range l.handlers {
		handler = h
		break
	}
	l.lock.Unlock()
	if handler != nil {
		handler(topic, payload)
	}
}

// Lose simulates the peer dropping the link.
func (l *Link) Lose() {
	l.onLost(ErrLost)
}
