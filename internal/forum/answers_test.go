package forum_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackit/internal/forum"
	"stackit/internal/models"
)

func (env *testEnv) mustCreateQuestion(t *testing.T) *models.Question {
	t.Helper()
	question, err := env.questions.Create(context.Background(), asker, forum.NewQuestion{
		Title:       "How do I use hooks?",
		Description: "<p>re-renders everywhere</p>",
		Tags:        []string{"react", "hooks"},
	})
	require.NoError(t, err)
	return question
}

func TestSubmitAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	answer, err := env.answers.Submit(ctx, helper, question.ID.String(), "<p>Use useEffect</p>")
	require.NoError(t, err)
	assert.Equal(t, question.ID, answer.QuestionID)
	assert.Equal(t, helper.ID, answer.UserID)
	assert.False(t, answer.IsAccepted)
	assert.Zero(t, answer.Upvotes())
	assert.Zero(t, answer.Downvotes())

	got, err := env.questions.Get(ctx, question.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.AnswerCount)

	notifications, err := env.notifications.List(ctx, asker)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeAnswer, notifications[0].Type)
	assert.False(t, notifications[0].Read)
	assert.Contains(t, notifications[0].Message, "How do I use hooks?")
}

func TestSubmitAnswerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	_, err := env.answers.Submit(ctx, nil, question.ID.String(), "<p>hi</p>")
	assert.ErrorIs(t, err, forum.ErrAuthenticationRequired)

	_, err = env.answers.Submit(ctx, helper, question.ID.String(), "   ")
	var validationErr *forum.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = env.answers.Submit(ctx, helper, "00000000-0000-0000-0000-000000000000", "<p>hi</p>")
	var notFound *forum.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	assert.Empty(t, env.fake.Rows("answers"))
}

func TestSubmitOwnAnswerNoNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	_, err := env.answers.Submit(ctx, asker, question.ID.String(), "<p>answering myself</p>")
	require.NoError(t, err)

	notifications, err := env.notifications.List(ctx, asker)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestAnswerCountAcrossSubmitsAndDeletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	var ids []string
	for i := 0; i < 3; i++ {
		answer, err := env.answers.Submit(ctx, helper, question.ID.String(), "<p>answer</p>")
		require.NoError(t, err)
		ids = append(ids, answer.ID.String())
	}

	for _, id := range ids[:2] {
		require.NoError(t, env.answers.Delete(ctx, helper, question.ID.String(), id))
	}

	got, err := env.questions.Get(ctx, question.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.AnswerCount)

	answers, err := env.answers.List(ctx, question.ID.String())
	require.NoError(t, err)
	assert.Len(t, answers, 1)
}

func TestAnswerCountFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	// Simulate drift: the stored count is already below the delta.
	counts := &forum.RPCUpdater{Store: env.st}
	require.NoError(t, counts.AddAnswerCount(ctx, question.ID.String(), -5))

	got, err := env.questions.Get(ctx, question.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.AnswerCount)
}

func TestVoteIdempotentPerVoter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	answer, err := env.answers.Submit(ctx, helper, question.ID.String(), "<p>vote on me</p>")
	require.NoError(t, err)
	answerID := answer.ID.String()

	_, err = env.answers.Vote(ctx, nil, question.ID.String(), answerID, models.VoteUp)
	assert.ErrorIs(t, err, forum.ErrAuthenticationRequired)

	voted, err := env.answers.Vote(ctx, asker, question.ID.String(), answerID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Upvotes())

	// Same voter, same direction: no double count.
	voted, err = env.answers.Vote(ctx, asker, question.ID.String(), answerID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Upvotes())

	voted, err = env.answers.Vote(ctx, other, question.ID.String(), answerID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 2, voted.Upvotes())

	voted, err = env.answers.Vote(ctx, asker, question.ID.String(), answerID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Downvotes())
}

func TestAcceptAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	first, err := env.answers.Submit(ctx, helper, question.ID.String(), "<p>first</p>")
	require.NoError(t, err)
	second, err := env.answers.Submit(ctx, other, question.ID.String(), "<p>second</p>")
	require.NoError(t, err)

	err = env.answers.Accept(ctx, nil, question.ID.String(), first.ID.String())
	assert.ErrorIs(t, err, forum.ErrAuthenticationRequired)

	// Only the question owner may accept.
	err = env.answers.Accept(ctx, helper, question.ID.String(), first.ID.String())
	assert.ErrorIs(t, err, forum.ErrForbidden)

	require.NoError(t, env.answers.Accept(ctx, asker, question.ID.String(), first.ID.String()))

	got, err := env.questions.Get(ctx, question.ID.String())
	require.NoError(t, err)
	assert.True(t, got.IsSolved)

	answers, err := env.answers.List(ctx, question.ID.String())
	require.NoError(t, err)
	acceptedCount := 0
	for _, a := range answers {
		if a.IsAccepted {
			acceptedCount++
			assert.Equal(t, first.ID, a.ID)
		}
	}
	assert.Equal(t, 1, acceptedCount)

	// Accepting the same answer again is a quiet no-op.
	require.NoError(t, env.answers.Accept(ctx, asker, question.ID.String(), first.ID.String()))

	// A second accepted answer per question is rejected.
	err = env.answers.Accept(ctx, asker, question.ID.String(), second.ID.String())
	var validationErr *forum.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateAndDeleteAreAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	answer, err := env.answers.Submit(ctx, helper, question.ID.String(), "<p>original</p>")
	require.NoError(t, err)
	answerID := answer.ID.String()

	_, err = env.answers.Update(ctx, other, question.ID.String(), answerID, "<p>hijacked</p>")
	assert.ErrorIs(t, err, forum.ErrForbidden)

	err = env.answers.Delete(ctx, other, question.ID.String(), answerID)
	assert.ErrorIs(t, err, forum.ErrForbidden)

	updated, err := env.answers.Update(ctx, helper, question.ID.String(), answerID, "<p>edited</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>edited</p>", updated.Text)

	_, err = env.answers.Update(ctx, helper, question.ID.String(), answerID, "  ")
	var validationErr *forum.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	require.NoError(t, env.answers.Delete(ctx, helper, question.ID.String(), answerID))
	assert.Empty(t, env.fake.Rows("answers"))
}
