package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type suggestTitleRequest struct {
	Description string `json:"description" binding:"required"`
}

// SuggestTitle asks the text-generation API for a title draft. Failures are
// a 502; asking a question never depends on this.
func (s *Server) SuggestTitle(c *gin.Context) {
	var req suggestTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := fmt.Sprintf("Suggest a short, clear question title for this post:\n\n%s", req.Description)
	title, err := s.suggest.SuggestTitle(c.Request.Context(), prompt)
	if err != nil {
		s.log.Warn().Err(err).Msg("title suggestion failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "no suggestion generated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}
