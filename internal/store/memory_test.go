package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapquiz/go-server/internal/quiz"
)

func newSession(id string) *Session {
	return &Session{
		ID:     id,
		Owner:  "owner-" + id,
		Mode:   "territory",
		Engine: quiz.NewEngine([]string{"France", "Spain"}, 2),
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	sess := newSession("a")
	require.NoError(t, st.Save(ctx, sess))

	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestGetMissing(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClosesEngine(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	sess := newSession("a")
	sess.Engine.StartNewGame()
	require.NoError(t, st.Save(ctx, sess))
	require.NoError(t, st.Delete(ctx, "a"))

	_, err := st.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	// A closed engine ignores further operations.
	before := sess.Engine.State()
	sess.Engine.HandleCorrectGuess(before.ActiveTarget)
	assert.Equal(t, before.Score, sess.Engine.State().Score)
}

func TestMarkRecordedOnlyOnce(t *testing.T) {
	sess := newSession("a")
	assert.True(t, sess.MarkRecorded())
	assert.False(t, sess.MarkRecorded())
	assert.False(t, sess.MarkRecorded())
}

func TestDeleteMissingIsNoop(t *testing.T) {
	st := NewMemoryStore()
	assert.NoError(t, st.Delete(context.Background(), "nope"))
}
