package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackit/internal/models"
)

func (s *Server) ListAnswers(c *gin.Context) {
	answers, err := s.answers.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (s *Server) SubmitAnswer(c *gin.Context) {
	var req models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.answers.Submit(c.Request.Context(), identityFrom(c), c.Param("id"), req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

func (s *Server) UpdateAnswer(c *gin.Context) {
	var req models.UpdateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.answers.Update(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("answerID"), req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) DeleteAnswer(c *gin.Context) {
	err := s.answers.Delete(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("answerID"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "answer deleted"})
}

func (s *Server) VoteAnswer(c *gin.Context) {
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.answers.Vote(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("answerID"), req.Direction)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":    answer,
		"upvotes":   answer.Upvotes(),
		"downvotes": answer.Downvotes(),
	})
}

func (s *Server) AcceptAnswer(c *gin.Context) {
	err := s.answers.Accept(c.Request.Context(), identityFrom(c), c.Param("id"), c.Param("answerID"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "answer accepted"})
}
