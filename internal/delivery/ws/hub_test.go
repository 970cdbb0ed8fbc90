package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediavault/internal/infra"
	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type authStub struct{}

func (authStub) Signup(context.Context, string, string) (*models.AdminUser, string, error) {
	return nil, "", errors.New("not implemented")
}

func (authStub) Login(context.Context, string, string) (*models.AdminUser, string, error) {
	return nil, "", errors.New("not implemented")
}

func (authStub) ValidateToken(_ context.Context, token string) (string, error) {
	if token != "good" {
		return "", errors.New("bad token")
	}
	return "admin-1", nil
}

func newFeedServer(t *testing.T) (*httptest.Server, *Hub, *models.MediaAsset) {
	t.Helper()

	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	store := infra.NewMemoryStore()
	media, err := store.InsertMedia(context.Background(), &models.MediaAsset{Title: "clip", Type: models.MediaTypeVideo})
	if err != nil {
		t.Fatalf("insert media: %v", err)
	}

	hub := NewHub(zl)
	srv := httptest.NewServer(ViewFeedHandler(hub, authStub{}, store, zl))
	t.Cleanup(srv.Close)

	return srv, hub, media
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
}

func waitForRoom(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s: want %d conns, have %d", room, want, hub.RoomSize(room))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestViewFeedDeliversEvents(t *testing.T) {
	srv, hub, media := newFeedServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "token=good&media_id="+media.ID), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForRoom(t, hub, media.ID, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan models.ViewEvent, 2)
	go Broadcast(ctx, hub, events, nil)

	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	events <- models.ViewEvent{MediaID: "someone-else", ViewedByIP: "9.9.9.9", Timestamp: at}
	events <- models.ViewEvent{MediaID: media.ID, ViewedByIP: "1.2.3.4", Timestamp: at}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg viewMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.MediaID != media.ID || msg.ViewedByIP != "1.2.3.4" || !msg.ViewedAt.Equal(at) {
		t.Fatalf("unexpected message: %+v", msg)
	}

	conn.Close()
	waitForRoom(t, hub, media.ID, 0)
}

func TestViewFeedRejectsBeforeUpgrade(t *testing.T) {
	srv, _, media := newFeedServer(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "bad token", query: "token=bad&media_id=" + media.ID, want: http.StatusUnauthorized},
		{name: "missing media", query: "token=good", want: http.StatusBadRequest},
		{name: "unknown media", query: "token=good&media_id=nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.query), nil)
			if err == nil {
				t.Fatal("expected handshake failure")
			}
			if resp == nil || resp.StatusCode != tt.want {
				t.Fatalf("unexpected response: %v", resp)
			}
		})
	}
}

func TestSendToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.SendToRoom("nobody", []byte("x"))
	if hub.RoomSize("nobody") != 0 {
		t.Fatal("room created by send")
	}
}

func TestSlowSubscriberDoesNotBlockHub(t *testing.T) {
	srv, hub, media := newFeedServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "token=good&media_id="+media.ID), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForRoom(t, hub, media.ID, 1)

	// hold the subscriber's write lock to simulate a stalled write
	hub.mu.Lock()
	var slow *client
	for _, c := range hub.rooms[media.ID] {
		slow = c
	}
	hub.mu.Unlock()
	slow.writeMu.Lock()

	sent := make(chan struct{})
	go func() {
		hub.SendToRoom(media.ID, []byte(`{"media_id":"x"}`))
		close(sent)
	}()
	time.Sleep(50 * time.Millisecond) // let the send reach the held lock

	other, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "token=good&media_id="+media.ID), nil)
	if err != nil {
		t.Fatalf("dial second subscriber: %v", err)
	}
	defer other.Close()
	waitForRoom(t, hub, media.ID, 2)

	slow.writeMu.Unlock()

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("send did not finish after the write lock was released")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, data, err := conn.ReadMessage(); err != nil || string(data) != `{"media_id":"x"}` {
		t.Fatalf("slow subscriber read: %q %v", data, err)
	}
}
