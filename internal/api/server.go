package api

import (
	"github.com/rs/zerolog"

	"stackit/internal/auth"
	"stackit/internal/config"
	"stackit/internal/forum"
	"stackit/internal/store"
	"stackit/internal/suggest"
)

type Server struct {
	config        *config.Config
	auth          *auth.Client
	verifier      *auth.Verifier
	store         *store.Client
	questions     *forum.QuestionService
	answers       *forum.AnswerService
	notifications *forum.NotificationService
	suggest       *suggest.Client
	log           zerolog.Logger
}

type Deps struct {
	Auth          *auth.Client
	Verifier      *auth.Verifier
	Store         *store.Client
	Questions     *forum.QuestionService
	Answers       *forum.AnswerService
	Notifications *forum.NotificationService
	Suggest       *suggest.Client // nil when no Cohere key is configured
}

func NewServer(cfg *config.Config, deps Deps, log zerolog.Logger) *Server {
	return &Server{
		config:        cfg,
		auth:          deps.Auth,
		verifier:      deps.Verifier,
		store:         deps.Store,
		questions:     deps.Questions,
		answers:       deps.Answers,
		notifications: deps.Notifications,
		suggest:       deps.Suggest,
		log:           log.With().Str("component", "api").Logger(),
	}
}
