package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newLocalHub(conns ...*Connection) *Hub {
	h := NewHubWithInstanceID(nil, "instance-a")
	for _, c := range conns {
		h.connections[c] = true
	}
	return h
}

func waitEvent(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("unmarshal feed event: %v", err)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting feed event")
	}
	return Event{}
}

func TestPublishDeliversToLocalConnections(t *testing.T) {
	a := &Connection{Admin: "admin", Send: make(chan []byte, 4)}
	b := &Connection{Admin: "admin", Send: make(chan []byte, 4)}
	hub := newLocalHub(a, b)

	hub.Publish(context.Background(), &Event{Type: EventBanApproved, RecordID: 7})

	for _, c := range []*Connection{a, b} {
		event := waitEvent(t, c.Send)
		if event.Type != EventBanApproved || event.RecordID != 7 {
			t.Fatalf("unexpected event %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be stamped on publish")
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	slow := &Connection{Admin: "admin", Send: make(chan []byte)}
	hub := newLocalHub(slow)

	done := make(chan struct{})
	go func() {
		hub.Publish(context.Background(), &Event{Type: EventHWICBlocked, HWIC: "device-abc-123"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full client buffer")
	}
}

func TestPublishFansOutThroughBroker(t *testing.T) {
	hub := newLocalHub()
	var published []byte
	hub.publishFn = func(_ context.Context, payload []byte) error {
		published = payload
		return nil
	}

	hub.Publish(context.Background(), &Event{Type: EventReportSubmitted, RecordID: 3})

	var env envelope
	if err := json.Unmarshal(published, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.SenderInstanceID != "instance-a" {
		t.Fatalf("expected sender instance-a, got %q", env.SenderInstanceID)
	}
}

func TestHandleRemoteSkipsOwnInstance(t *testing.T) {
	c := &Connection{Admin: "admin", Send: make(chan []byte, 4)}
	hub := newLocalHub(c)

	own, _ := json.Marshal(envelope{SenderInstanceID: "instance-a", Event: json.RawMessage(`{"type":"ban_rejected"}`)})
	hub.handleRemote(string(own))
	if len(c.Send) != 0 {
		t.Fatal("own instance event must not be delivered twice")
	}

	other, _ := json.Marshal(envelope{SenderInstanceID: "instance-b", Event: json.RawMessage(`{"type":"ban_rejected","record_id":9}`)})
	hub.handleRemote(string(other))
	event := waitEvent(t, c.Send)
	if event.Type != EventBanRejected || event.RecordID != 9 {
		t.Fatalf("unexpected remote event %+v", event)
	}
}

func TestRegisterAfterShutdownReturns(t *testing.T) {
	h := newLocalHub()
	go h.Run()
	h.Shutdown()

	done := make(chan struct{})
	go func() {
		conn := &Connection{Admin: "admin", Send: make(chan []byte, 1)}
		h.Register(conn)
		h.Unregister(conn)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("register/unregister blocked after shutdown")
	}
}

func TestStreamDeliversEventsOverWebSocket(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Shutdown()

	h := NewHandler(hub, func(*http.Request) string { return "admin" }, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(context.Background(), &Event{Type: EventHWICUnblocked, HWIC: "device-abc-123"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read: %v", err)
	}
	if event.Type != EventHWICUnblocked || event.HWIC != "device-abc-123" {
		t.Fatalf("unexpected event %+v", event)
	}
}
