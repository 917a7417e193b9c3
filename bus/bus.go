// bus.go
package bus

import (
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a path of string tokens, e.g. T("door", "state").
// Subscriptions may use MQTT-style wildcards: "+" matches exactly one
// token, "#" matches any remainder (including none) and must be last.
// Published topics are always concrete.
type Topic []string

const (
	WildcardOne = "+"
	WildcardAll = "#"
)

// T builds a topic from tokens.
func T(parts ...string) Topic { return Topic(parts) }

// String renders the topic for logs.
func (t Topic) String() string { return strings.Join(t, "/") }

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// NewMessage is a convenience constructor.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	bus   *Bus
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

// Subscriptions sit at the terminal node of their (possibly wildcard)
// pattern. Retained messages sit at their concrete path.
type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// addSubscription inserts a subscription into the trie and replays any
// retained messages its pattern matches.
func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	replayRetained(b.root, sub.topic, sub)
}

// replayRetained walks the concrete trie under pattern and hands every
// stored retained message to sub.
func replayRetained(n *node, pattern Topic, sub *Subscription) {
	if n == nil {
		return
	}
	if len(pattern) == 0 {
		if n.retained != nil {
			deliver(sub, n.retained)
		}
		return
	}
	switch tok := pattern[0]; tok {
	case WildcardAll:
		// Matches this node and the whole subtree.
		replayRetainedAll(n, sub)
	case WildcardOne:
		for _, child := range n.children {
			replayRetained(child, pattern[1:], sub)
		}
	default:
		replayRetained(n.children[tok], pattern[1:], sub)
	}
}

func replayRetainedAll(n *node, sub *Subscription) {
	if n.retained != nil {
		deliver(sub, n.retained)
	}
	for _, child := range n.children {
		replayRetainedAll(child, sub)
	}
}

// Publish delivers a message to every subscription whose pattern
// matches its topic, then stores or clears the retained copy.
// A retained message with a nil payload clears the slot.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	match(b.root, msg.Topic, msg)

	if !msg.Retained {
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		if msg.Payload == nil && n.children[tok] == nil {
			return // clearing a path that was never stored
		}
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

// match recurses over pattern branches: the literal token, "+", and a
// terminal "#" that swallows the remainder.
func match(n *node, rest Topic, msg *Message) {
	if n == nil {
		return
	}
	if h, ok := n.children[WildcardAll]; ok {
		deliverAll(h, msg)
	}
	if len(rest) == 0 {
		deliverAll(n, msg)
		return
	}
	match(n.children[rest[0]], rest[1:], msg)
	match(n.children[WildcardOne], rest[1:], msg)
}

func deliverAll(n *node, msg *Message) {
	for _, sub := range n.subs {
		deliver(sub, msg)
	}
}

// deliver never blocks: if the queue is full the oldest entry is
// dropped. The steal and resend are both non-blocking so a consumer
// racing us can never wedge a publisher holding the bus lock.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- msg:
	default:
	}
}

// unsubscribe removes a subscription from the trie and prunes empty
// nodes on the way back up.
func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	topic := sub.topic
	n := b.root
	var stack []*node
	for _, tok := range topic {
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	for i := len(topic) - 1; i >= 0; i-- {
		parent := stack[i]
		child := parent.children[topic[i]]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, topic[i])
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string // placeholder for future identity/auth
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage is a convenience constructor.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		bus:   c.bus,
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
