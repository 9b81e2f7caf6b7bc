package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"bytebuddhi-be/internal/dto"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func waitForClientCount(t *testing.T, hub *Hub, userID uuid.UUID, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.clients[userID])
		hub.mu.RUnlock()
		if got == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count for %s did not reach %d", userID, want)
}

func TestSendDropsSlowClientOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	fast := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	slow := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}

	hub.register <- fast
	hub.register <- slow
	waitForClientCount(t, hub, userID, 2)

	hub.Send(userID, dto.NotificationDTO{Type: "TEST", Title: "hi"})

	// The fast client gets the push.
	select {
	case <-fast.Send:
	case <-time.After(time.Second):
		t.Fatal("fast client never received the message")
	}

	// The slow client is unregistered and its channel closed by the Run loop.
	select {
	case _, ok := <-slow.Send:
		if ok {
			t.Fatal("slow client received a message instead of being dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("slow client Send channel was never closed")
	}
	waitForClientCount(t, hub, userID, 1)

	// A trailing unregister from the read pump must be a no-op, not a
	// second close.
	hub.unregister <- slow
	waitForClientCount(t, hub, userID, 1)
}

func TestBroadcastReturnsWithSaturatedClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userA := uuid.New()
	userB := uuid.New()
	hub.register <- &Client{Hub: hub, UserID: userA, Send: make(chan []byte)}
	hub.register <- &Client{Hub: hub, UserID: userB, Send: make(chan []byte)}
	waitForClientCount(t, hub, userA, 1)
	waitForClientCount(t, hub, userB, 1)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(dto.NotificationDTO{Type: "TEST"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked with saturated clients")
	}
}
