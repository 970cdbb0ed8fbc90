package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
)

type viewMsg struct {
	MediaID    string    `json:"media_id"`
	ViewedAt   time.Time `json:"viewed_at"`
	ViewedByIP string    `json:"viewed_by_ip"`
}

// ViewFeedHandler streams live view events of one asset to an admin.
// Browsers cannot set headers on the upgrade request, so the session token
// travels as ?token=.
//
// GET /ws/views?media_id=<id>&token=<jwt>
func ViewFeedHandler(hub *Hub, auth ports.AuthService, media ports.MediaRepository, log *logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if _, err := auth.ValidateToken(r.Context(), q.Get("token")); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		mediaID := q.Get("media_id")
		if mediaID == "" {
			http.Error(w, "missing media_id", http.StatusBadRequest)
			return
		}
		asset, err := media.GetMediaByID(r.Context(), mediaID)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if asset == nil {
			http.Error(w, "media not found", http.StatusNotFound)
			return
		}

		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		hub.Register(asset.ID, conn)
		defer hub.Unregister(asset.ID, conn)

		if log != nil {
			log.Log(logger.LogEntry{
				Level:   "info",
				Message: "view feed opened",
				Fields:  map[string]any{"mediaID": asset.ID},
			})
		}

		// clients only listen; reading detects the disconnect
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// Broadcast forwards recorded views to the rooms of their assets until ctx
// is done or events is closed.
func Broadcast(ctx context.Context, hub *Hub, events <-chan models.ViewEvent, log *logger.ZapLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			payload, err := json.Marshal(viewMsg{
				MediaID:    ev.MediaID,
				ViewedAt:   ev.Timestamp,
				ViewedByIP: ev.ViewedByIP,
			})
			if err != nil {
				if log != nil {
					log.Log(logger.LogEntry{Level: "error", Message: "view feed marshal failed", Error: err})
				}
				continue
			}

			hub.SendToRoom(ev.MediaID, payload)
		}
	}
}
