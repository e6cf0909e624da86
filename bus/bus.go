// Package bus is a small retained-message pub/sub used by host tooling to
// observe the engine (trace monitors, simulators). Topics are string paths;
// subscriptions may use "+" (one level) and "#" (rest of path) wildcards.
// The firmware tick path never touches the bus.
package bus

import (
	"sync"
)

// Topic is a path of string tokens, e.g. Topic{"trace", "button", "3"}.
type Topic []string

const (
	WildOne  = "+" // matches exactly one token
	WildRest = "#" // matches the remainder of the topic
)

// T builds a topic from its tokens.
func T(parts ...string) Topic { return Topic(parts) }

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// node is one level of the subscription trie. Wildcard children live under
// their literal "+" / "#" tokens.
type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a bus whose subscription channels buffer queueLen messages.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic {
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

	// Deliver retained messages already matching this pattern.
	b.walkRetained(b.root, topic, func(m *Message) { deliver(sub, m) })
}

// Publish delivers msg to every matching subscription. Full queues drop the
// oldest message rather than blocking the publisher.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.match(b.root, msg.Topic, func(sub *Subscription) { deliver(sub, msg) })

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
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
}

func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		// Full queue: drop the oldest. Both ends stay non-blocking in case
		// the consumer drains concurrently.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// match walks the trie collecting subscriptions whose pattern accepts topic.
func (b *Bus) match(n *node, topic Topic, fn func(*Subscription)) {
	if len(topic) == 0 {
		for _, sub := range n.subs {
			fn(sub)
		}
		if rest, ok := n.children[WildRest]; ok {
			for _, sub := range rest.subs {
				fn(sub)
			}
		}
		return
	}
	if child, ok := n.children[topic[0]]; ok {
		b.match(child, topic[1:], fn)
	}
	if child, ok := n.children[WildOne]; ok {
		b.match(child, topic[1:], fn)
	}
	if child, ok := n.children[WildRest]; ok {
		for _, sub := range child.subs {
			fn(sub)
		}
	}
}

// walkRetained finds retained messages under pattern.
func (b *Bus) walkRetained(n *node, pattern Topic, fn func(*Message)) {
	if len(pattern) == 0 {
		if n.retained != nil {
			fn(n.retained)
		}
		return
	}
	switch pattern[0] {
	case WildRest:
		b.allRetained(n, fn)
	case WildOne:
		for _, child := range n.children {
			b.walkRetained(child, pattern[1:], fn)
		}
	default:
		if child, ok := n.children[pattern[0]]; ok {
			b.walkRetained(child, pattern[1:], fn)
		}
	}
}

func (b *Bus) allRetained(n *node, fn func(*Message)) {
	if n.retained != nil {
		fn(n.retained)
	}
	for _, child := range n.children {
		b.allRetained(child, fn)
	}
}

func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

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

	// Prune empty branches.
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

// Connection groups subscriptions under one owner.
type Connection struct {
	bus  *Bus
	mu   sync.Mutex
	subs []*Subscription
	id   string
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
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

func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}
