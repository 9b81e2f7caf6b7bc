package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel is the Redis pubsub channel used to fan pushes out to
// other instances of this service.
const clusterChannel = "cluster_events"

type Hub struct {
	// Registered clients map: UserID -> list of clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, may be nil
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a notification to every device of one user, locally and via
// Redis for any other instance holding a connection for that user.
func (h *Hub) Send(userID uuid.UUID, notification dto.NotificationDTO) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	h.mu.RLock()
	slow := h.deliverLocal(h.clients[userID], data)
	h.mu.RUnlock()

	h.dropSlow(slow)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

// Broadcast pushes a notification to every connected client.
func (h *Hub) Broadcast(notification dto.NotificationDTO) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	h.mu.RLock()
	var slow []*Client
	for _, clients := range h.clients {
		slow = append(slow, h.deliverLocal(clients, data)...)
	}
	h.mu.RUnlock()

	h.dropSlow(slow)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": "*",
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

// subscribeToRedis relays pushes published by other instances to the
// clients connected here. Every instance subscribes to the same channel
// and filters by target user.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			h.mu.RLock()
			var slow []*Client
			for _, clients := range h.clients {
				slow = append(slow, h.deliverLocal(clients, payload.Message)...)
			}
			h.mu.RUnlock()
			h.dropSlow(slow)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		slow := h.deliverLocal(h.clients[uid], payload.Message)
		h.mu.RUnlock()

		h.dropSlow(slow)
	}
}

// deliverLocal queues the message on every client and returns the ones whose
// send buffer was full. Callers hold mu; disconnecting happens afterwards via
// dropSlow so the Run loop, which owns closing Send, is never waited on under
// the lock.
func (h *Hub) deliverLocal(clients []*Client, message []byte) []*Client {
	var slow []*Client
	for _, client := range clients {
		select {
		case client.Send <- message:
		default:
			slow = append(slow, client)
		}
	}
	return slow
}

func (h *Hub) dropSlow(clients []*Client) {
	for _, client := range clients {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		h.unregister <- client
	}
}
