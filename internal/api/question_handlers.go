package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackit/internal/forum"
	"stackit/internal/models"
)

func (s *Server) ListQuestions(c *gin.Context) {
	opts := forum.ListOptions{
		Filter:    c.DefaultQuery("filter", forum.FilterNewest),
		Ascending: c.Query("sort") == "asc",
		Search:    c.Query("search"),
		Tag:       c.Query("tag"),
	}

	questions, err := s.questions.List(c.Request.Context(), opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (s *Server) CreateQuestion(c *gin.Context) {
	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := s.questions.Create(c.Request.Context(), identityFrom(c), forum.NewQuestion{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (s *Server) GetQuestion(c *gin.Context) {
	question, err := s.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}
