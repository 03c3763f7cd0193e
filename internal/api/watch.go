package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stackit/internal/models"
)

var upgrader = websocket.Upgrader{
	// Browser origin checks happen in the CORS layer; the watch sockets are
	// read-only pushes of data the plain GET endpoints already serve.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchAnswers pushes the full answer list for a question on connect and
// after every remote change, one JSON message per delivery. Closing the
// socket releases the subscription.
func (s *Server) WatchAnswers(c *gin.Context) {
	questionID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var mu sync.Mutex
	unsubscribe, err := s.answers.Watch(c.Request.Context(), questionID, func(answers []models.Answer) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(answers); err != nil {
			s.log.Debug().Err(err).Msg("answer watch write failed")
		}
	})
	if err != nil {
		mu.Lock()
		conn.WriteJSON(gin.H{"error": "watch unavailable"})
		mu.Unlock()
		return
	}
	defer unsubscribe()

	// Hold the socket until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WatchNotifications is the authenticated bell feed. Browsers cannot set
// headers on websocket dials, so the token rides in a query parameter.
func (s *Server) WatchNotifications(c *gin.Context) {
	ident, err := s.verifier.Verify(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var mu sync.Mutex
	unsubscribe, err := s.notifications.Watch(c.Request.Context(), ident, func(notifications []models.Notification) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(notifications); err != nil {
			s.log.Debug().Err(err).Msg("notification watch write failed")
		}
	})
	if err != nil {
		mu.Lock()
		conn.WriteJSON(gin.H{"error": "watch unavailable"})
		mu.Unlock()
		return
	}
	defer unsubscribe()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
