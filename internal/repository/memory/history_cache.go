package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bytebuddhi-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const historyTTL = 30 * time.Minute

// HistoryCache keeps recent conversation history in Redis so the chat
// service can skip a database round trip on consecutive turns.
type HistoryCache struct {
	client *redis.Client
}

func NewHistoryCache(client *redis.Client) *HistoryCache {
	return &HistoryCache{client: client}
}

func historyKey(conversationId uuid.UUID) string {
	return fmt.Sprintf("chat:history:%s", conversationId)
}

func (c *HistoryCache) Get(ctx context.Context, conversationId uuid.UUID) ([]llm.Message, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, historyKey(conversationId)).Bytes()
	if err != nil {
		return nil, false
	}

	var history []llm.Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, false
	}
	return history, true
}

func (c *HistoryCache) Set(ctx context.Context, conversationId uuid.UUID, history []llm.Message) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(history)
	if err != nil {
		return
	}
	c.client.Set(ctx, historyKey(conversationId), raw, historyTTL)
}

func (c *HistoryCache) Invalidate(ctx context.Context, conversationId uuid.UUID) {
	if c.client == nil {
		return
	}
	c.client.Del(ctx, historyKey(conversationId))
}
