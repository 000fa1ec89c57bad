// Package sse streams index changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// IndexUpdated follows note events, at most once per throttle interval.
const IndexUpdated = "index.updated"

// noteEventTypes maps synchronizer change kinds to event types.
var noteEventTypes = map[string]string{
	"created": "note.created",
	"updated": "note.updated",
	"moved":   "note.moved",
	"removed": "note.removed",
}

type client chan []byte

// Broker fans events out to connected SSE clients.
//
// One loop goroutine owns the client set and the throttle clock. Every
// public method is a message to that loop, so there is no locking.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration

	join   chan client
	leave  chan client
	events chan Event
	count  chan chan int

	stop    chan struct{}
	done    chan struct{}
	closing atomic.Bool
}

// NewBroker creates a broker that emits index.updated at most once per
// throttle (2s when throttle <= 0). Handlers send a keep-alive comment
// every 30s.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:  throttle,
		keepAlive: 30 * time.Second,
		join:      make(chan client),
		leave:     make(chan client),
		events:    make(chan Event, 256),
		count:     make(chan chan int),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

// frame renders event in the text/event-stream wire format.
func frame(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, payload), nil
}

type loopState struct {
	clients   map[client]struct{}
	lastIndex time.Time
}

func (s *loopState) send(event Event) {
	raw, err := frame(event)
	if err != nil {
		return
	}
	for c := range s.clients {
		select {
		case c <- raw:
		default:
			// Slow client; drop rather than stall the loop.
		}
	}
}

func (b *Broker) loop() {
	defer close(b.done)

	st := &loopState{clients: make(map[client]struct{})}
	for {
		select {
		case <-b.stop:
			for c := range st.clients {
				close(c)
			}
			return

		case c := <-b.join:
			st.clients[c] = struct{}{}

		case c := <-b.leave:
			if _, ok := st.clients[c]; ok {
				delete(st.clients, c)
				close(c)
			}

		case event := <-b.events:
			st.send(event)
			if _, isNote := noteTypes[event.Type]; !isNote {
				continue
			}
			if now := time.Now(); now.Sub(st.lastIndex) >= b.throttle {
				st.lastIndex = now
				st.send(Event{Type: IndexUpdated, Data: map[string]string{}})
			}

		case resp := <-b.count:
			resp <- len(st.clients)
		}
	}
}

var noteTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(noteEventTypes))
	for _, typ := range noteEventTypes {
		m[typ] = struct{}{}
	}
	return m
}()

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closing.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.done
}

// Subscribe adds a client and returns its message channel. After Close the
// returned channel is already closed.
func (b *Broker) Subscribe() chan []byte {
	c := make(client, 64)
	if b.closing.Load() {
		close(c)
		return c
	}
	select {
	case b.join <- c:
	case <-b.done:
		close(c)
	}
	return c
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closing.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closing.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends an event to all connected clients. Note events also
// trigger the throttled index.updated.
func (b *Broker) Publish(event Event) {
	if b.closing.Load() {
		return
	}
	select {
	case b.events <- event:
	case <-b.done:
	}
}

// NoteChanged publishes the note event for a synchronizer change kind.
// Unknown kinds are ignored. It has the shape of index.EventCallback.
func (b *Broker) NoteChanged(kind, path string) {
	typ, ok := noteEventTypes[kind]
	if !ok {
		return
	}
	b.Publish(Event{Type: typ, Data: map[string]string{"path": path}})
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	for {
		var msg []byte
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			msg = []byte(": ping\n\n")
		case m, open := <-ch:
			if !open {
				return
			}
			msg = m
		}
		if _, err := w.Write(msg); err != nil {
			return
		}
		flusher.Flush()
	}
}
