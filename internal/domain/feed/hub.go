package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/cloudban/cloudban-api/internal/pkg/metrics"
)

// Channel is the Redis pub/sub channel feed events are fanned out on.
const Channel = "cloudban:feed"

type envelope struct {
	SenderInstanceID string          `json:"sender_instance_id"`
	Event            json.RawMessage `json:"event"`
}

// Connection represents a WebSocket connection
type Connection struct {
	Admin string
	Conn  *websocket.Conn
	Send  chan []byte
}

// Hub fans moderation events out to admin connections, across instances via Redis Pub/Sub
type Hub struct {
	connections map[*Connection]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
	publishFn  func(ctx context.Context, payload []byte) error
}

// NewHub creates a new feed hub. redisClient may be nil for single-instance deployments.
func NewHub(redisClient *redis.Client) *Hub {
	return NewHubWithInstanceID(redisClient, uuid.NewString())
}

// NewHubWithInstanceID creates a new hub with explicit instance identifier.
func NewHubWithInstanceID(redisClient *redis.Client, instanceID string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  instanceID,
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, Channel)
		h.publishFn = func(ctx context.Context, payload []byte) error {
			return redisClient.Publish(ctx, Channel, payload).Err()
		}
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()
			metrics.FeedConnections.Inc()
			log.Debug().Str("admin", conn.Admin).Msg("Admin connected to feed")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
				metrics.FeedConnections.Dec()
			}
			h.mu.Unlock()
			log.Debug().Str("admin", conn.Admin).Msg("Admin disconnected from feed")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleRemote(msg.Payload)
		}
	}
}

func (h *Hub) handleRemote(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return
	}
	// Already delivered locally by Publish.
	if env.SenderInstanceID == h.instanceID {
		return
	}
	h.broadcastLocal(env.Event)
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		select {
		case conn.Send <- data:
		default:
			metrics.FeedEventsDropped.Inc()
			log.Warn().Str("admin", conn.Admin).Msg("Feed send buffer full")
		}
	}
}

// Publish delivers event to local connections and to other instances via Redis
func (h *Hub) Publish(ctx context.Context, event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal feed event")
		return
	}

	h.broadcastLocal(data)

	if h.publishFn == nil {
		return
	}
	payload, err := json.Marshal(envelope{SenderInstanceID: h.instanceID, Event: data})
	if err != nil {
		return
	}
	if err := h.publishFn(ctx, payload); err != nil {
		log.Error().Err(err).Str("channel", Channel).Msg("Redis publish failed")
	}
}

// Register adds a connection. It is a no-op once the hub is shut down.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection. It is a no-op once the hub is shut down.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
