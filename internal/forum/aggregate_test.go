package forum_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackit/internal/forum"
)

func TestReadModifyWriteUpdater(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	question := env.mustCreateQuestion(t)

	updater := &forum.ReadModifyWriteUpdater{Store: env.st}

	require.NoError(t, updater.AddAnswerCount(ctx, question.ID.String(), 2))
	got, err := env.questions.Get(ctx, question.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, got.AnswerCount)

	// Drifted decrements clamp at zero instead of going negative.
	require.NoError(t, updater.AddAnswerCount(ctx, question.ID.String(), -5))
	got, err = env.questions.Get(ctx, question.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.AnswerCount)
}

func TestReadModifyWriteUpdaterMissingQuestion(t *testing.T) {
	env := newTestEnv(t)

	updater := &forum.ReadModifyWriteUpdater{Store: env.st}
	err := updater.AddAnswerCount(context.Background(), "00000000-0000-0000-0000-000000000000", 1)

	var notFound *forum.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
