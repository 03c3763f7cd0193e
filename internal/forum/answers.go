package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stackit/internal/auth"
	"stackit/internal/models"
	"stackit/internal/store"
)

type AnswerService struct {
	store     *store.Client
	realtime  *store.Realtime
	counts    AggregateUpdater
	questions *QuestionService
	relay     *NotificationService
	log       zerolog.Logger
}

func NewAnswerService(st *store.Client, rt *store.Realtime, counts AggregateUpdater, questions *QuestionService, relay *NotificationService, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		store:     st,
		realtime:  rt,
		counts:    counts,
		questions: questions,
		relay:     relay,
		log:       log.With().Str("component", "answers").Logger(),
	}
}

func (s *AnswerService) List(ctx context.Context, questionID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.store.From("answers").
		Eq("question_id", questionID).
		Order("created_at", false).
		Get(ctx, &answers)
	if err != nil {
		return nil, &RemoteError{Op: "list answers", Err: err}
	}
	if answers == nil {
		answers = []models.Answer{}
	}
	return answers, nil
}

// Submit stores a new answer, bumps the parent's answer_count and notifies
// the question owner. The count bump and the notification are best-effort:
// once the answer document is written, their failures are logged only.
func (s *AnswerService) Submit(ctx context.Context, ident *auth.Identity, questionID, body string) (*models.Answer, error) {
	if ident == nil {
		return nil, ErrAuthenticationRequired
	}
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Field: "text", Reason: "answer cannot be empty"}
	}

	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer := models.Answer{
		ID:           uuid.New(),
		QuestionID:   question.ID,
		Text:         body,
		UserID:       ident.ID,
		Username:     ident.Email,
		CreatedAt:    time.Now().UTC(),
		UpvoterIDs:   []string{},
		DownvoterIDs: []string{},
		IsAccepted:   false,
	}

	var created models.Answer
	if err := s.store.From("answers").Insert(ctx, answer, &created); err != nil {
		return nil, &RemoteError{Op: "submit answer", Err: err}
	}

	if err := s.counts.AddAnswerCount(ctx, questionID, 1); err != nil {
		s.log.Warn().Err(err).Str("question_id", questionID).Msg("answer count increment failed, count may drift")
	}

	if question.UserID != ident.ID {
		message := fmt.Sprintf("%s answered your question %q", ident.Email, question.Title)
		if err := s.relay.Notify(ctx, question.UserID, message, models.NotificationTypeAnswer); err != nil {
			s.log.Warn().Err(err).Str("owner_id", question.UserID).Msg("owner notification failed")
		}
	}

	s.log.Info().Str("answer_id", created.ID.String()).Str("question_id", questionID).Msg("answer submitted")
	return &created, nil
}

// Vote records one vote per user per direction. A repeat vote in the same
// direction is a no-op, not an error.
func (s *AnswerService) Vote(ctx context.Context, ident *auth.Identity, questionID, answerID string, direction models.VoteDirection) (*models.Answer, error) {
	if ident == nil {
		return nil, ErrAuthenticationRequired
	}

	answer, err := s.get(ctx, questionID, answerID)
	if err != nil {
		return nil, err
	}
	if answer.HasVoted(ident.ID, direction) {
		return answer, nil
	}

	column := "upvoter_ids"
	voters := append(answer.UpvoterIDs, ident.ID)
	if direction == models.VoteDown {
		column = "downvoter_ids"
		voters = append(answer.DownvoterIDs, ident.ID)
	}

	patch := map[string]any{column: voters}
	if _, err := s.store.From("answers").Eq("id", answerID).Update(ctx, patch); err != nil {
		return nil, &RemoteError{Op: "vote answer", Err: err}
	}

	if direction == models.VoteDown {
		answer.DownvoterIDs = voters
	} else {
		answer.UpvoterIDs = voters
	}
	return answer, nil
}

// Accept marks an answer accepted and the question solved. Only the question
// owner may accept, the flags never transition back, and a question holds at
// most one accepted answer. Re-accepting the same answer is a no-op.
func (s *AnswerService) Accept(ctx context.Context, ident *auth.Identity, questionID, answerID string) error {
	if ident == nil {
		return ErrAuthenticationRequired
	}

	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if question.UserID != ident.ID {
		return ErrForbidden
	}

	answer, err := s.get(ctx, questionID, answerID)
	if err != nil {
		return err
	}
	if answer.IsAccepted {
		return nil
	}

	var accepted []models.Answer
	err = s.store.From("answers").
		Eq("question_id", questionID).
		Eq("is_accepted", true).
		Get(ctx, &accepted)
	if err != nil {
		return &RemoteError{Op: "check accepted answer", Err: err}
	}
	if len(accepted) > 0 {
		return &ValidationError{Field: "answer", Reason: "another answer is already accepted"}
	}

	if _, err := s.store.From("answers").Eq("id", answerID).Update(ctx, map[string]any{"is_accepted": true}); err != nil {
		return &RemoteError{Op: "accept answer", Err: err}
	}
	if _, err := s.store.From("questions").Eq("id", questionID).Update(ctx, map[string]any{"is_solved": true}); err != nil {
		return &RemoteError{Op: "mark question solved", Err: err}
	}

	s.log.Info().Str("answer_id", answerID).Str("question_id", questionID).Msg("answer accepted")
	return nil
}

// Update rewrites the answer body. Author only.
func (s *AnswerService) Update(ctx context.Context, ident *auth.Identity, questionID, answerID, body string) (*models.Answer, error) {
	if ident == nil {
		return nil, ErrAuthenticationRequired
	}
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Field: "text", Reason: "answer cannot be empty"}
	}

	answer, err := s.get(ctx, questionID, answerID)
	if err != nil {
		return nil, err
	}
	if answer.UserID != ident.ID {
		return nil, ErrForbidden
	}

	if _, err := s.store.From("answers").Eq("id", answerID).Update(ctx, map[string]any{"text": body}); err != nil {
		return nil, &RemoteError{Op: "update answer", Err: err}
	}
	answer.Text = body
	return answer, nil
}

// Delete removes the answer and decrements the parent's answer_count, which
// is floored at zero if counts have drifted. Author only.
func (s *AnswerService) Delete(ctx context.Context, ident *auth.Identity, questionID, answerID string) error {
	if ident == nil {
		return ErrAuthenticationRequired
	}

	answer, err := s.get(ctx, questionID, answerID)
	if err != nil {
		return err
	}
	if answer.UserID != ident.ID {
		return ErrForbidden
	}

	if _, err := s.store.From("answers").Eq("id", answerID).Delete(ctx); err != nil {
		return &RemoteError{Op: "delete answer", Err: err}
	}

	if err := s.counts.AddAnswerCount(ctx, questionID, -1); err != nil {
		s.log.Warn().Err(err).Str("question_id", questionID).Msg("answer count decrement failed, count may drift")
	}

	s.log.Info().Str("answer_id", answerID).Str("question_id", questionID).Msg("answer deleted")
	return nil
}

// Watch delivers the full current answer list for a question now and again
// after every remote change, in the order the store emits them. The returned
// release function must be called when the watching view goes away.
func (s *AnswerService) Watch(ctx context.Context, questionID string, deliver func([]models.Answer)) (func(), error) {
	if s.realtime == nil {
		return nil, fmt.Errorf("watch answers: realtime not connected")
	}

	sub, err := s.realtime.Subscribe(ctx, "answers", "question_id=eq."+questionID, func(store.Change) {
		answers, err := s.List(ctx, questionID)
		if err != nil {
			s.log.Warn().Err(err).Str("question_id", questionID).Msg("answer refresh failed")
			return
		}
		deliver(answers)
	})
	if err != nil {
		return nil, err
	}

	answers, err := s.List(ctx, questionID)
	if err != nil {
		sub.Unsubscribe()
		return nil, err
	}
	deliver(answers)

	return sub.Unsubscribe, nil
}

func (s *AnswerService) get(ctx context.Context, questionID, answerID string) (*models.Answer, error) {
	var answer models.Answer
	err := s.store.From("answers").
		Eq("id", answerID).
		Eq("question_id", questionID).
		Single().
		Get(ctx, &answer)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Collection: "answers", ID: answerID}
	}
	if err != nil {
		return nil, &RemoteError{Op: "get answer", Err: err}
	}
	return &answer, nil
}
