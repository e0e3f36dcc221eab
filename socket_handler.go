package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

type subscriber struct {
	id   string
	send chan Event
}

// handleSocket streams the wavelet's queue events. The first message is a
// snapshot of the pending operations; incoming messages are ignored.
func (s *server) handleSocket(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	w, err := s.wavelets.get(ctx, c.Param("wave"), c.Param("wavelet"))
	if err != nil {
		log.Error().Err(err).Msg("error loading wavelet")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("error upgrading connection")
		return
	}
	defer conn.Close()

	sub := &subscriber{id: uuid.NewString(), send: make(chan Event, sendBuffer)}
	w.mu.Lock()
	ops := w.manager.Operations()
	sub.send <- newEvent(eventSnapshot, 0, len(ops)-1, ops)
	w.subscribers.Add(sub)
	w.mu.Unlock()

	logger := log.With().Str("subscriber", sub.id).Str("wave", c.Param("wave")).Str("wavelet", c.Param("wavelet")).Logger()
	logger.Info().Msg("subscriber connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		sub.writePump(conn)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error().Err(err).Msg("failed to read message from client")
			}
			break
		}
	}

	w.subscribers.Remove(sub)
	close(sub.send)
	<-done
	logger.Info().Msg("subscriber disconnected")
}

func (s *subscriber) writePump(conn *websocket.Conn) {
	for ev := range s.send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			log.Error().Err(err).Str("subscriber", s.id).Msg("failed to write message")
			for range s.send {
			}
			return
		}
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
