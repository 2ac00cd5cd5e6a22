package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/databases"
)

// statsPushInterval is how often the live feed pushes fresh counts
const statsPushInterval = 15 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatsFeed pushes live application stats to the homepage ticker
type StatsFeed struct {
	DB databases.ApplicationDatabase
}

// StatsFeedHandler upgrades the connection and streams the stats document
// until the client disconnects
func (s StatsFeed) StatsFeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade stats feed connection", "error", err)
		return
	}

	done := make(chan struct{})
	go func() {
		// drain reads so close frames are processed
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		ticker := time.NewTicker(statsPushInterval)
		defer ticker.Stop()
		for {
			ctx, cancel := api.WithQueryTimeout(context.Background())
			stats, err := computeStats(ctx, s.DB)
			cancel()
			if err != nil {
				zap.S().Warnw("failed to compute stats for feed", "error", err)
			} else if err := conn.WriteJSON(stats); err != nil {
				return
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
}
