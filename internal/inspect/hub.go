package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/fiber/pkg/fiber"
)

// MessageType is the type of a commit feed message.
type MessageType string

const (
	MessageCommit MessageType = "commit"
	MessageError  MessageType = "error"
)

// Message is sent to feed subscribers via WebSocket. Seq numbers the outcomes
// of render passes in the order they happened.
type Message struct {
	Type   MessageType       `json:"type"`
	Seq    uint64            `json:"seq"`
	Replay bool              `json:"replay,omitempty"`
	Commit *fiber.CommitInfo `json:"commit,omitempty"`
	Error  string            `json:"error,omitempty"`
	Code   string            `json:"code,omitempty"`
}

const (
	feedBuffer   = 16
	writeTimeout = 5 * time.Second
)

// subscriber is one feed connection. A single writer goroutine owns conn
// writes; send is closed when the subscriber is dropped.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans the outcome of each render pass out to WebSocket subscribers. A
// new subscriber first receives the latest outcome, marked as a replay.
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	seq      uint64
	latest   *Message
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger.With("component", "feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local inspection tool
			},
		},
	}
}

// HandleWebSocket subscribes the connection to the feed until the client
// goes away. Clients only receive; anything they send is discarded.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, feedBuffer)}

	h.mu.Lock()
	if h.latest != nil {
		replay := *h.latest
		replay.Replay = true
		if data, err := json.Marshal(replay); err == nil {
			sub.send <- data
		}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(sub)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(sub)
}

func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(sub)
			return
		}
	}
	sub.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// drop unsubscribes sub. It is safe to call more than once.
func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.send)
}

// NotifyCommit publishes a committed pass.
func (h *Hub) NotifyCommit(info fiber.CommitInfo) {
	h.publish(Message{Type: MessageCommit, Commit: &info})
}

// NotifyError publishes a failed pass.
func (h *Hub) NotifyError(code, msg string) {
	h.publish(Message{Type: MessageError, Code: code, Error: msg})
}

// publish records msg as the latest outcome and queues it for every
// subscriber. A subscriber whose queue is full is dropped rather than
// holding up the render loop.
func (h *Hub) publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	msg.Seq = h.seq
	h.latest = &msg

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode feed message", "error", err)
		return
	}
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("dropping slow feed subscriber", "seq", msg.Seq)
			delete(h.subs, sub)
			close(sub.send)
		}
	}
}

// Latest returns the most recent pass outcome, if any.
func (h *Hub) Latest() (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return Message{}, false
	}
	return *h.latest, true
}

// ClientCount returns the number of subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unsubscribes everyone. Each connection is closed once its queued
// messages are written.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.send)
	}
}
