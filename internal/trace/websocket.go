package trace

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/GitBrincie212/flow-like/pkg/logger"
)

// StreamMessage is the wire format pushed to websocket clients.
type StreamMessage struct {
	Type    string          `json:"type"`
	RunID   string          `json:"runId"`
	Payload json.RawMessage `json:"payload"`
}

const (
	// MsgTypeTraceEntry carries one completed trace entry.
	MsgTypeTraceEntry = "trace.entry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamSink broadcasts completed trace entries to attached websocket
// clients. Slow clients are dropped once their send buffer fills.
type StreamSink struct {
	mu      sync.RWMutex
	clients map[string]*streamClient
	bufSize int
	log     logger.Logger
}

type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewStreamSink creates a sink with the given per-client buffer size.
func NewStreamSink(bufSize int, log logger.Logger) *StreamSink {
	if bufSize <= 0 {
		bufSize = 256
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &StreamSink{
		clients: make(map[string]*streamClient),
		bufSize: bufSize,
		log:     log,
	}
}

// ServeHTTP upgrades the request and attaches the client to the stream.
func (s *StreamSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	client := &streamClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.bufSize),
	}

	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()
	s.log.Debug("trace stream client connected", map[string]interface{}{"clientId": client.id})

	go s.writePump(client)
	go s.readPump(client)
}

// Push implements Sink. Entries are serialized once and fanned out.
func (s *StreamSink) Push(runID string, entry *LogMessage) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data, err := json.Marshal(StreamMessage{Type: MsgTypeTraceEntry, RunID: runID, Payload: payload})
	if err != nil {
		return
	}

	s.mu.RLock()
	var stale []*streamClient
	for _, client := range s.clients {
		select {
		case client.send <- data:
		default:
			stale = append(stale, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range stale {
		s.detach(client)
	}
}

// Close disconnects every client.
func (s *StreamSink) Close() {
	s.mu.Lock()
	clients := make([]*streamClient, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.clients = make(map[string]*streamClient)
	s.mu.Unlock()

	for _, client := range clients {
		close(client.send)
		client.conn.Close()
	}
}

func (s *StreamSink) detach(client *streamClient) {
	s.mu.Lock()
	if _, ok := s.clients[client.id]; ok {
		delete(s.clients, client.id)
		close(client.send)
	}
	s.mu.Unlock()
	client.conn.Close()
	s.log.Debug("trace stream client dropped", map[string]interface{}{"clientId": client.id})
}

func (s *StreamSink) writePump(client *streamClient) {
	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.detach(client)
			return
		}
	}
}

func (s *StreamSink) readPump(client *streamClient) {
	// The stream is one-way; reads only serve to detect disconnects.
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			s.detach(client)
			return
		}
	}
}
