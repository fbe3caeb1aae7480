package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Topic names for the published message feeds.
const (
	TopicSessionUpdate   = "session_update"
	TopicTelemetryUpdate = "telemetry_update"
	TopicWeatherUpdate   = "weather_update"
	TopicAlert           = "alert"
	TopicIncident        = "incident"
	TopicTrackConfig     = "track_config"
)

// Envelope wraps every published payload with its type tag and timestamp.
type Envelope struct {
	Type      string      `json:"type"`
	Timestamp float64     `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Hub fans published messages out to websocket clients, and across
// instances through redis when a client is configured. Clients registered
// with an empty topic receive every feed.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Topic string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

// Register subscribes a client to one topic, or to all feeds when topic is
// empty.
func (h *Hub) Register(topic string) *Client {
	client := &Client{
		Topic: topic,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if topicClients, ok := h.clients[client.Topic]; ok {
		delete(topicClients, client)
		if len(topicClients) == 0 {
			delete(h.clients, client.Topic)
		}
	}
	close(client.Send)
}

// Publish wraps data in an Envelope and broadcasts it on the topic. Slow
// clients are skipped rather than blocking the tick.
func (h *Hub) Publish(topic string, data interface{}) {
	payload, err := json.Marshal(Envelope{
		Type:      topic,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Data:      data,
	})
	if err != nil {
		log.Printf("stream marshal error: %v", err)
		return
	}

	// With redis configured, local delivery happens through the
	// subscription so every instance (this one included) sees each message
	// exactly once.
	if h.redis != nil {
		if err := h.redis.Publish(context.Background(), redisChannel(topic), payload).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
			h.broadcastLocal(topic, payload)
		}
		return
	}

	h.broadcastLocal(topic, payload)
}

// Encode builds the wire form of one envelope, for callers that write
// frames directly instead of publishing through the hub.
func Encode(topic string, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      topic,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Data:      data,
	})
}

func (h *Hub) broadcastLocal(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- payload:
		default:
		}
	}
	if topic == "" {
		return
	}
	for client := range h.clients[""] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "race:*:broadcast")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.broadcastLocal(topicFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(topic string) string {
	return "race:" + topic + ":broadcast"
}

func topicFromChannel(ch string) string {
	// race:{topic}:broadcast
	const prefix = "race:"
	const suffix = ":broadcast"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
