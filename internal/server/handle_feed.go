package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// handleFeed streams every scan and finish event to a display board.
// Client messages are ignored.
func handleFeed(broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		ch := broker.Subscribe(feedTopic)
		defer broker.Unsubscribe(feedTopic, ch)

		for {
			select {
			case <-ctx.Done():
				logger.Debug("feed closed", "error", ctx.Err())
				return
			case data := <-ch:
				if err := writeFrame(ctx, conn, data); err != nil {
					logger.Debug("feed write failed", "error", err)
					return
				}
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
