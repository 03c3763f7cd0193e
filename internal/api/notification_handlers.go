package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListNotifications(c *gin.Context) {
	notifications, err := s.notifications.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	err := s.notifications.MarkRead(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}
