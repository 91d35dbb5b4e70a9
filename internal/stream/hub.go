package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// TracksTopic receives an event for every successfully uploaded track.
const TracksTopic = "tracks"

// TrackEvent is the payload pushed to map clients when an upload lands.
type TrackEvent struct {
	TrackID    string  `json:"track_id"`
	Name       string  `json:"name"`
	UserID     string  `json:"user_id"`
	DistanceM  float64 `json:"distance_m"`
	PointCount int     `json:"point_count"`
}

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

// PublishTrack fans a track event out to local clients and, when redis is
// configured, to every other instance listening on the same channel.
func (h *Hub) PublishTrack(ev TrackEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("track event marshal error: %v", err)
		return
	}
	h.Broadcast(TracksTopic, payload)
}

// Broadcast delivers a payload to every subscriber of a topic. With redis
// configured there is a single delivery path: the event goes through pub/sub
// and comes back to this instance like any other, so clients never see
// duplicates in a multi-instance deployment.
func (h *Hub) Broadcast(topic string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(topic), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(topic, payload)
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[topic]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, redisChannel("*"))
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(topicFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(topic string) string {
	return "traceview:" + topic + ":events"
}

func topicFromChannel(ch string) string {
	// traceview:{topic}:events
	const prefix = "traceview:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
