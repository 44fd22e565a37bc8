package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tripkit/docstore/docstore"
	"tripkit/notify/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// allow all origins for WebSocket connections
		// should only in dev
		return true
	},
}

const writeWait = 10 * time.Second

// documentEvent is one websocket frame: a snapshot of a watched document.
type documentEvent struct {
	Path   string          `json:"path"`
	Exists bool            `json:"exists"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// watchDocuments streams document snapshots for the path given in the
// `path` query parameter. The current document (if any) is delivered
// first, then every subsequent change.
func (h *handler) watchDocuments(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan documentEvent, 8)
	notify.SubscribeProcessor(ctx, h.remote, path,
		func(snap docstore.Snapshot) (documentEvent, bool, error) {
			return documentEvent{Path: snap.Path(), Exists: snap.Exists(), Value: snap.Data()}, false, nil
		}, events)

	// drain reads so we notice when the peer goes away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ev := range events {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
