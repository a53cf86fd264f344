package datasync_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jypelle/sunface/internal/face/datasync"
	"github.com/jypelle/sunface/internal/face/datasync/datasynctest"
)

const timeout = time.Second

func newChannel(options datasync.Options) (*datasync.Channel, *datasynctest.Transport, *datasynctest.Loop) {
	transport := datasynctest.NewTransport()
	loop := datasynctest.NewLoop()
	return datasync.NewChannel(transport, loop.Post, options), transport, loop
}

func connect(t *testing.T, c *datasync.Channel, transport *datasynctest.Transport, loop *datasynctest.Loop) *datasynctest.Link {
	t.Helper()
	c.Connect()
	dial := transport.NextDial(timeout)
	if dial == nil {
		t.Fatal("Timeout waiting for handshake")
	}
	link := dial.Succeed()
	if !loop.RunUntil(timeout, c.Ready) {
		t.Fatalf("Expected ready connected channel, got %s", c.State())
	}
	return link
}

func encode(t *testing.T, payload datasync.Payload) []byte {
	t.Helper()
	data, err := datasync.MsgpackCodec{}.Encode(payload)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return data
}

func TestConnectTwiceWhileConnectingDialsOnce(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})

	c.Connect()
	c.Connect()

	dial := transport.NextDial(timeout)
	if dial == nil {
		t.Fatal("Timeout waiting for handshake")
	}
	if c.State() != datasync.CONNECTING {
		t.Errorf("Expected connecting state, got %s", c.State())
	}

	dial.Succeed()
	loop.RunUntil(timeout, func() bool { return c.State() == datasync.CONNECTED })
	c.Connect()

	if transport.DialCount() != 1 {
		t.Errorf("Expected exactly 1 handshake, got %d", transport.DialCount())
	}
	if c.Stats().Handshakes != 1 {
		t.Errorf("Expected 1 handshake in stats, got %d", c.Stats().Handshakes)
	}
}

func TestPublishWhileDisconnectedCoalesces(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})

	c.Publish("/weather", nil)
	c.Publish("/weather", nil)
	lastId := c.Publish("/weather", nil)

	if c.Stats().Pending != 1 {
		t.Fatalf("Expected 1 pending request, got %d", c.Stats().Pending)
	}
	if c.Stats().Coalesced != 2 {
		t.Errorf("Expected 2 coalesced requests, got %d", c.Stats().Coalesced)
	}

	link := connect(t, c, transport, loop)
	if !loop.RunUntil(timeout, func() bool { return c.Stats().Sent == 1 }) {
		t.Fatalf("Expected 1 sent request, got %d", c.Stats().Sent)
	}
	loop.RunFor(50 * time.Millisecond)

	published := link.Published()
	if len(published) != 1 {
		t.Fatalf("Expected exactly 1 publish, got %d", len(published))
	}
	if published[0].Topic != "/weather" {
		t.Errorf("Expected topic /weather, got %s", published[0].Topic)
	}

	payload, err := datasync.MsgpackCodec{}.Decode(published[0].Payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if payload[datasync.KeyRequestId] != lastId {
		t.Errorf("Expected newest request id %s, got %v", lastId, payload[datasync.KeyRequestId])
	}
	if len(payload) != 1 {
		t.Errorf("Expected only the uuid field, got %v", payload)
	}
	if c.Stats().Pending != 0 {
		t.Errorf("Expected empty queue after flush")
	}
}

func TestPublishUsesFreshIds(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	connect(t, c, transport, loop)

	first := c.Publish("/weather", nil)
	second := c.Publish("/weather", nil)

	if first == second {
		t.Errorf("Expected distinct idempotency ids, got %s twice", first)
	}
	if !loop.RunUntil(timeout, func() bool { return c.Stats().Sent == 2 }) {
		t.Errorf("Expected 2 sent requests, got %d", c.Stats().Sent)
	}
}

func TestQueueIsBounded(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{MaxPending: 2})

	c.Publish("/a", nil)
	c.Publish("/b", nil)
	c.Publish("/c", nil)

	if c.Stats().Evicted != 1 {
		t.Errorf("Expected 1 evicted request, got %d", c.Stats().Evicted)
	}

	link := connect(t, c, transport, loop)
	loop.RunUntil(timeout, func() bool { return c.Stats().Sent == 2 })

	topics := map[string]bool{}
	for _, p := range link.Published() {
		topics[p.Topic] = true
	}
	if topics["/a"] || !topics["/b"] || !topics["/c"] {
		t.Errorf("Expected /b and /c to be flushed, got %v", topics)
	}
}

func TestRequestsWaitForSubscriptions(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	c.Subscribe("/weather-info", func(m datasync.Message) {})
	c.Publish("/weather", nil)

	release := transport.HoldSubscribes()
	defer release()

	c.Connect()
	dial := transport.NextDial(timeout)
	if dial == nil {
		t.Fatal("Timeout waiting for handshake")
	}
	link := dial.Succeed()
	if !loop.RunUntil(timeout, func() bool { return c.State() == datasync.CONNECTED }) {
		t.Fatalf("Expected connected state, got %s", c.State())
	}
	loop.RunFor(50 * time.Millisecond)

	if c.Ready() {
		t.Errorf("Expected channel not ready while subscribing")
	}
	if len(link.Published()) != 0 {
		t.Fatalf("Expected no publish before the subscription, got %d", len(link.Published()))
	}

	c.Publish("/weather", nil)
	if c.Stats().Pending != 1 || c.Stats().Coalesced != 1 {
		t.Errorf("Expected request to stay queued, got stats %+v", c.Stats())
	}

	release()
	if !loop.RunUntil(timeout, func() bool { return c.Stats().Sent == 1 }) {
		t.Fatalf("Expected 1 sent request, got %d", c.Stats().Sent)
	}

	operations := link.Operations()
	expected := []string{"subscribe /weather-info", "publish /weather"}
	if len(operations) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, operations)
	}
	for i := range expected {
		if operations[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, operations)
		}
	}
}

func TestDisconnectWhileSubscribingKeepsQueue(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	c.Subscribe("/weather-info", func(m datasync.Message) {})
	c.Publish("/weather", nil)

	release := transport.HoldSubscribes()

	c.Connect()
	dial := transport.NextDial(timeout)
	if dial == nil {
		t.Fatal("Timeout waiting for handshake")
	}
	link := dial.Succeed()
	loop.RunUntil(timeout, func() bool { return c.State() == datasync.CONNECTED })

	c.Disconnect()
	release()
	loop.RunFor(50 * time.Millisecond)

	if len(link.Published()) != 0 {
		t.Errorf("Expected no publish on a released link, got %d", len(link.Published()))
	}
	if c.Stats().Pending != 1 {
		t.Errorf("Expected request kept for the next connection, got %d pending", c.Stats().Pending)
	}
}

func TestCloseWaitsForLinkRelease(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	c.Subscribe("/weather-info", func(m datasync.Message) {})
	link := connect(t, c, transport, loop)

	c.Close()

	if !link.Closed() {
		t.Errorf("Expected link closed when Close returns")
	}
	if unsubscribed := link.Unsubscribed(); len(unsubscribed) != 1 {
		t.Errorf("Expected unsubscribe before close, got %v", unsubscribed)
	}
}

func TestInboundMessageIsDispatched(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{TopicPrefix: "watch1"})

	var received []datasync.Message
	c.Subscribe("/weather-info", func(m datasync.Message) {
		received = append(received, m)
	})

	link := connect(t, c, transport, loop)
	if !loop.RunUntil(timeout, func() bool { return link.Subscribed("watch1/weather-info") }) {
		t.Fatal("Expected subscription on watch1/weather-info")
	}

	link.Deliver("watch1/weather-info", encode(t, datasync.Payload{"high": "70", "icon_id": 800}))
	if !loop.RunUntil(timeout, func() bool { return len(received) == 1 }) {
		t.Fatal("Timeout waiting for message")
	}

	if received[0].Path != "/weather-info" {
		t.Errorf("Expected path /weather-info, got %s", received[0].Path)
	}
	if received[0].Payload["high"] != "70" {
		t.Errorf("Expected high 70, got %v", received[0].Payload["high"])
	}
	if c.Stats().Received != 1 {
		t.Errorf("Expected 1 received message, got %d", c.Stats().Received)
	}
}

func TestUnknownPathAndMalformedPayloadAreDropped(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})

	calls := 0
	c.Subscribe("/weather-info", func(m datasync.Message) { calls++ })

	link := connect(t, c, transport, loop)
	loop.RunUntil(timeout, func() bool { return link.Subscribed("/weather-info") })

	link.DeliverAny("/other", encode(t, datasync.Payload{"high": "70"}))
	link.Deliver("/weather-info", []byte{0xc1})

	if !loop.RunUntil(timeout, func() bool { return c.Stats().Dropped == 2 }) {
		t.Fatalf("Expected 2 dropped messages, got %d", c.Stats().Dropped)
	}
	if calls != 0 {
		t.Errorf("Expected no dispatch, got %d", calls)
	}
}

// Power policy: a failed handshake waits for the next visibility change.
func TestFailedHandshakeIsNotRetried(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})

	c.Connect()
	dial := transport.NextDial(timeout)
	if dial == nil {
		t.Fatal("Timeout waiting for handshake")
	}
	dial.Fail(errors.New("broker unreachable"))

	if !loop.RunUntil(timeout, func() bool { return c.State() == datasync.DISCONNECTED }) {
		t.Fatalf("Expected disconnected state, got %s", c.State())
	}
	loop.RunFor(100 * time.Millisecond)

	if transport.DialCount() != 1 {
		t.Errorf("Expected no automatic retry, got %d handshakes", transport.DialCount())
	}

	c.Connect()
	if transport.NextDial(timeout) == nil {
		t.Errorf("Expected an explicit Connect to start a new handshake")
	}
}

// Power policy: a lost link is not re-established in the background.
func TestConnectionLossIsNotRetried(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	link := connect(t, c, transport, loop)

	link.Lose()

	if !loop.RunUntil(timeout, func() bool { return c.State() == datasync.DISCONNECTED }) {
		t.Fatalf("Expected disconnected state, got %s", c.State())
	}
	loop.RunFor(100 * time.Millisecond)

	if transport.DialCount() != 1 {
		t.Errorf("Expected no automatic reconnection, got %d handshakes", transport.DialCount())
	}
	if !loop.RunUntil(timeout, link.Closed) {
		t.Errorf("Expected lost link to be closed")
	}
}

func TestDisconnectCancelsHandshake(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})

	c.Connect()
	dial := transport.NextDial(timeout)
	if dial == nil {
		t.Fatal("Timeout waiting for handshake")
	}

	c.Disconnect()

	if c.State() != datasync.DISCONNECTED {
		t.Errorf("Expected disconnected state, got %s", c.State())
	}
	if !dial.Cancelled() {
		t.Errorf("Expected handshake context to be cancelled")
	}

	loop.RunFor(50 * time.Millisecond)
	if c.State() != datasync.DISCONNECTED {
		t.Errorf("Expected cancelled handshake to leave the channel disconnected, got %s", c.State())
	}
}

func TestDisconnectReleasesLink(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	c.Subscribe("/weather-info", func(m datasync.Message) {})

	var states []datasync.ConnectionState
	c.OnStateChange(func(s datasync.ConnectionState) { states = append(states, s) })

	link := connect(t, c, transport, loop)
	loop.RunUntil(timeout, func() bool { return link.Subscribed("/weather-info") })

	c.Disconnect()
	c.Disconnect()

	if !loop.RunUntil(timeout, link.Closed) {
		t.Fatal("Expected link to be closed")
	}
	unsubscribed := link.Unsubscribed()
	if len(unsubscribed) != 1 || unsubscribed[0] != "/weather-info" {
		t.Errorf("Expected unsubscribe of /weather-info, got %v", unsubscribed)
	}

	expected := []datasync.ConnectionState{datasync.CONNECTING, datasync.CONNECTED, datasync.DISCONNECTED}
	if len(states) != len(expected) {
		t.Fatalf("Expected states %v, got %v", expected, states)
	}
	for i := range expected {
		if states[i] != expected[i] {
			t.Errorf("Expected states %v, got %v", expected, states)
		}
	}
}

func TestPublishFailureIsCountedNotRetried(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	link := connect(t, c, transport, loop)
	link.SetPublishErr(errors.New("no route"))

	c.Publish("/weather", nil)

	if !loop.RunUntil(timeout, func() bool { return c.Stats().Failed == 1 }) {
		t.Fatalf("Expected 1 failed publish, got %d", c.Stats().Failed)
	}
	loop.RunFor(50 * time.Millisecond)
	if c.Stats().Failed != 1 || c.Stats().Pending != 0 {
		t.Errorf("Expected no retry, got stats %+v", c.Stats())
	}
}

func TestCloseForgetsQueue(t *testing.T) {
	c, transport, loop := newChannel(datasync.Options{})
	c.Publish("/weather", nil)

	c.Close()

	link := connect(t, c, transport, loop)
	loop.RunFor(50 * time.Millisecond)
	if len(link.Published()) != 0 {
		t.Errorf("Expected no publish after Close, got %d", len(link.Published()))
	}
}
