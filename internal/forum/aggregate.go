package forum

import (
	"context"
	"errors"

	"stackit/internal/models"
	"stackit/internal/store"
)

// AggregateUpdater maintains the denormalized answer_count on a question.
// There is no transaction spanning an answer write and the count adjustment;
// if the adjustment fails the count drifts, which is accepted and floored at
// zero rather than reported.
type AggregateUpdater interface {
	AddAnswerCount(ctx context.Context, questionID string, delta int) error
}

// RPCUpdater adjusts the count through a database function, so the
// read-and-clamp happens atomically on the server. This is the default.
type RPCUpdater struct {
	Store *store.Client
}

func (u *RPCUpdater) AddAnswerCount(ctx context.Context, questionID string, delta int) error {
	params := map[string]any{"qid": questionID, "delta": delta}
	if err := u.Store.RPC(ctx, "adjust_answer_count", params, nil); err != nil {
		return &RemoteError{Op: "adjust answer count", Err: err}
	}
	return nil
}

// ReadModifyWriteUpdater adjusts the count with a client-side get-then-patch,
// for projects where the database function is not installed. Concurrent
// submissions can race and lose increments.
type ReadModifyWriteUpdater struct {
	Store *store.Client
}

func (u *ReadModifyWriteUpdater) AddAnswerCount(ctx context.Context, questionID string, delta int) error {
	var question models.Question
	err := u.Store.From("questions").Eq("id", questionID).Single().Get(ctx, &question)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Collection: "questions", ID: questionID}
	}
	if err != nil {
		return &RemoteError{Op: "read answer count", Err: err}
	}

	count := question.AnswerCount + delta
	if count < 0 {
		count = 0
	}

	patch := map[string]any{"answer_count": count}
	if _, err := u.Store.From("questions").Eq("id", questionID).Update(ctx, patch); err != nil {
		return &RemoteError{Op: "write answer count", Err: err}
	}
	return nil
}
