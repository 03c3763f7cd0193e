package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackit/internal/api"
	"stackit/internal/auth"
	"stackit/internal/config"
	"stackit/internal/forum"
	"stackit/internal/models"
	"stackit/internal/store"
	"stackit/internal/store/storetest"
)

func setupTestServer(t *testing.T) (*gin.Engine, *storetest.Server) {
	t.Helper()
	fake := storetest.New()
	t.Cleanup(fake.Close)

	cfg := &config.Config{Supabase: fake.Config()}
	logger := zerolog.Nop()

	st := store.NewClient(cfg.Supabase, logger)
	questions := forum.NewQuestionService(st, logger)
	notifications := forum.NewNotificationService(st, nil, logger)
	counts := &forum.RPCUpdater{Store: st}
	answers := forum.NewAnswerService(st, nil, counts, questions, notifications, logger)

	deps := api.Deps{
		Auth:          auth.NewClient(cfg),
		Verifier:      auth.NewVerifier(cfg),
		Store:         st,
		Questions:     questions,
		Answers:       answers,
		Notifications: notifications,
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.SetupRoutes(router, api.NewServer(cfg, deps, logger), cfg)
	return router, fake
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestQuestionAnswerWorkflow(t *testing.T) {
	router, _ := setupTestServer(t)

	askerToken := registerAndLogin(t, router, "asker@test.com")
	helperToken := registerAndLogin(t, router, "helper@test.com")

	// Asker posts a question.
	w := doJSON(t, router, http.MethodPost, "/api/v1/questions", askerToken, gin.H{
		"title":       "How do I use hooks?",
		"description": "<p>My component re-renders forever.</p>",
		"tags":        []string{"React", "hooks"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var question models.Question
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &question))
	assert.Equal(t, []string{"react", "hooks"}, question.Tags)
	assert.Equal(t, 0, question.AnswerCount)
	questionPath := fmt.Sprintf("/api/v1/questions/%s", question.ID)

	// Helper answers it.
	w = doJSON(t, router, http.MethodPost, questionPath+"/answers", helperToken, gin.H{
		"text": "<p>Use useEffect</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var answer models.Answer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	answerPath := fmt.Sprintf("%s/answers/%s", questionPath, answer.ID)

	// The denormalized count moved.
	w = doJSON(t, router, http.MethodGet, questionPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &question))
	assert.Equal(t, 1, question.AnswerCount)
	assert.False(t, question.IsSolved)

	// The asker has one unread answer notification.
	w = doJSON(t, router, http.MethodGet, "/api/v1/notifications", askerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bell struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bell))
	require.Len(t, bell.Notifications, 1)
	assert.Equal(t, 1, bell.UnreadCount)
	assert.Equal(t, models.NotificationTypeAnswer, bell.Notifications[0].Type)

	// Only the question owner may accept.
	w = doJSON(t, router, http.MethodPost, answerPath+"/accept", helperToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, answerPath+"/accept", askerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Accepting twice stays accepted and does not error.
	w = doJSON(t, router, http.MethodPost, answerPath+"/accept", askerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, questionPath+"/answers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var answers []models.Answer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answers))
	require.Len(t, answers, 1)
	assert.True(t, answers[0].IsAccepted)

	w = doJSON(t, router, http.MethodGet, questionPath, "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &question))
	assert.True(t, question.IsSolved)

	// Bell goes quiet after mark-as-read.
	readPath := fmt.Sprintf("/api/v1/notifications/%s/read", bell.Notifications[0].ID)
	w = doJSON(t, router, http.MethodPost, readPath, askerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/notifications", askerToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bell))
	assert.Equal(t, 0, bell.UnreadCount)
}

func TestAuthRequiredEndpoints(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/questions", "", gin.H{
		"title": "t", "description": "d", "tags": []string{"go"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/questions", "garbage-token", gin.H{
		"title": "t", "description": "d", "tags": []string{"go"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuestionValidationOverHTTP(t *testing.T) {
	router, fake := setupTestServer(t)
	token := registerAndLogin(t, router, "asker@test.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/questions", token, gin.H{
		"title":       "Too many tags",
		"description": "<p>d</p>",
		"tags":        []string{"a", "b", "c", "d", "e", "f"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, fake.Rows("questions"))
}

func TestTagFilterOverHTTP(t *testing.T) {
	router, _ := setupTestServer(t)
	token := registerAndLogin(t, router, "asker@test.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/questions", token, gin.H{
		"title": "Firebase hosting", "description": "<p>d</p>", "tags": []string{"firebase"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/questions", token, gin.H{
		"title": "Go question", "description": "<p>d</p>", "tags": []string{"go"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/questions?tag=firebase", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var questions []models.Question
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	require.Len(t, questions, 1)
	assert.Equal(t, "Firebase hosting", questions[0].Title)

	// Stored tags are lower-case; the match is case-sensitive.
	w = doJSON(t, router, http.MethodGet, "/api/v1/questions?tag=Firebase", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.Empty(t, questions)
}

func TestMe(t *testing.T) {
	router, _ := setupTestServer(t)
	token := registerAndLogin(t, router, "asker@test.com")

	w := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "asker@test.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
}

func TestMissingQuestionIsNotFound(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/questions/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
