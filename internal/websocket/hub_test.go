package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   nil,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestSendRoutesByUser(t *testing.T) {
	hub := NewHub(slog.Default())

	phone := mockClient(hub, 1)
	tablet := mockClient(hub, 1)
	other := mockClient(hub, 2)
	hub.Register(phone)
	hub.Register(tablet)
	hub.Register(other)

	msg := NewMessage(EntityMission, "completed", 42, map[string]any{"points": float64(15)})
	hub.Send(1, msg)

	// Both of user 1's devices receive the message.
	for _, c := range []*Client{phone, tablet} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "mission_completed" {
				t.Errorf("expected type mission_completed, got %s", got.Type)
			}
			if got.ID != 42 {
				t.Errorf("expected id 42, got %d", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	// User 2's device must not see user 1's events.
	select {
	case <-other.send:
		t.Fatal("message leaked to another user")
	default:
	}

	hub.Unregister(phone)
	hub.Unregister(tablet)
	hub.Unregister(other)
}

func TestSendNoClients(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Send(99, NewMessage(EntityWeight, "created", 1, nil))
}

func TestSendFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Send(1, NewMessage(EntityFood, "created", int64(i), nil))
	}

	// This should drop the message, not panic or block
	hub.Send(1, NewMessage(EntityFood, "dropped", 999, nil))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(EntityBadge, "awarded", 5, nil)
	if msg.Type != "badge_awarded" {
		t.Errorf("expected type badge_awarded, got %s", msg.Type)
	}
	if msg.Entity != EntityBadge {
		t.Errorf("expected entity %s, got %s", EntityBadge, msg.Entity)
	}
	if msg.Action != "awarded" {
		t.Errorf("expected action awarded, got %s", msg.Action)
	}
	if msg.ID != 5 {
		t.Errorf("expected id 5, got %d", msg.ID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c := mockClient(hub, userID)
			hub.Register(c)
			hub.Send(userID, NewMessage(EntityExercise, "created", 0, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i % 5))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
