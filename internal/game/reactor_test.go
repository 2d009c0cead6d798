package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bananagame/platform/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReactor(store *fakeStore) (*Reactor, *event.Bus) {
	bus := event.NewBus(discardLogger())
	return NewReactor(bus, store, discardLogger()), bus
}

func TestHighScoreAchievedWhenLiveScoreAhead(t *testing.T) {
	r, bus := newTestReactor(&fakeStore{highScore: 20})

	err := r.HandleAnswerSubmitted(context.Background(), event.Payload{
		"userId": int64(7), "isCorrect": true, "score": 30,
	})
	require.NoError(t, err)

	history := bus.History()
	require.Len(t, history, 1)
	assert.Equal(t, event.HighScoreAchieved, history[0].Kind)
	assert.Equal(t, int64(7), history[0].Payload["userId"])
	assert.Equal(t, 30, history[0].Payload["score"])
}

func TestHighScoreAdvisoryFiresPerImprovement(t *testing.T) {
	// The persisted high score is stale until game end, so every improving
	// answer past it fires again. That repetition is intentional.
	r, bus := newTestReactor(&fakeStore{highScore: 5})
	ctx := context.Background()

	for _, score := range []int{10, 20, 30} {
		err := r.HandleAnswerSubmitted(ctx, event.Payload{
			"userId": int64(7), "isCorrect": true, "score": score,
		})
		require.NoError(t, err)
	}

	assert.Len(t, bus.History(), 3)
}

func TestNoAdvisoryWhenBehindPersistedHighScore(t *testing.T) {
	r, bus := newTestReactor(&fakeStore{highScore: 100})

	err := r.HandleAnswerSubmitted(context.Background(), event.Payload{
		"userId": int64(7), "isCorrect": true, "score": 10,
	})
	require.NoError(t, err)
	assert.Empty(t, bus.History())
}

func TestNoAdvisoryOnIncorrectOrAnonymous(t *testing.T) {
	r, bus := newTestReactor(&fakeStore{})
	ctx := context.Background()

	require.NoError(t, r.HandleAnswerSubmitted(ctx, event.Payload{
		"userId": int64(7), "isCorrect": false, "score": 10,
	}))
	require.NoError(t, r.HandleAnswerSubmitted(ctx, event.Payload{
		"userId": int64(0), "isCorrect": true, "score": 10,
	}))

	assert.Empty(t, bus.History())
}

func TestHighScoreLookupErrorIsReported(t *testing.T) {
	r, bus := newTestReactor(&fakeStore{highScoreErr: errors.New("db down")})

	err := r.HandleAnswerSubmitted(context.Background(), event.Payload{
		"userId": int64(7), "isCorrect": true, "score": 10,
	})
	require.Error(t, err)
	assert.Empty(t, bus.History())
}

func TestGameEndedPersistsScore(t *testing.T) {
	store := &fakeStore{}
	r, bus := newTestReactor(store)

	err := r.HandleGameEnded(context.Background(), event.Payload{
		"userId": int64(7), "finalScore": 40, "highScore": 0,
	})
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, int64(7), store.saved[0].UserID)
	assert.Equal(t, 40, store.saved[0].Score)

	history := bus.History()
	require.Len(t, history, 1)
	assert.Equal(t, event.ScoreSaved, history[0].Kind)
	assert.Equal(t, 40, history[0].Payload["score"])
}

func TestGameEndedSkipsZeroScoreAndAnonymous(t *testing.T) {
	store := &fakeStore{}
	r, bus := newTestReactor(store)
	ctx := context.Background()

	require.NoError(t, r.HandleGameEnded(ctx, event.Payload{
		"userId": int64(7), "finalScore": 0,
	}))
	require.NoError(t, r.HandleGameEnded(ctx, event.Payload{
		"userId": int64(0), "finalScore": 50,
	}))

	assert.Empty(t, store.saved)
	assert.Empty(t, bus.History())
}

func TestGameEndedStorageFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	r, bus := newTestReactor(store)

	err := r.HandleGameEnded(context.Background(), event.Payload{
		"userId": int64(7), "finalScore": 40,
	})

	require.NoError(t, err, "the session caller already has its response")
	assert.Empty(t, bus.History(), "no ScoreSaved on failure")
}

func TestRegisteredReactorPersistsOnEnd(t *testing.T) {
	saved := make(chan struct{})
	store := &fakeStore{}
	bus := event.NewBus(discardLogger())
	provider := &fakeProvider{questions: []Question{{Question: "q", Solution: 6}}}
	session := NewSession(bus, provider, store, discardLogger())

	reactor := NewReactor(bus, &signalStore{fakeStore: store, saved: saved}, discardLogger())
	unsub := reactor.Register()
	defer unsub()

	ctx := context.Background()
	session.Start(ctx, 7)
	_, err := session.RequestQuestion(ctx)
	require.NoError(t, err)
	_, err = session.SubmitAnswer(ctx, 6)
	require.NoError(t, err)
	session.End(ctx)

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("score was not persisted after GameEnded")
	}

	require.Len(t, store.saved, 1)
	assert.Equal(t, 10, store.saved[0].Score)
}

func TestUnregisteredReactorStaysQuiet(t *testing.T) {
	store := &fakeStore{}
	bus := event.NewBus(discardLogger())
	reactor := NewReactor(bus, store, discardLogger())

	unsub := reactor.Register()
	unsub()

	bus.Publish(context.Background(), event.GameEnded, event.Payload{
		"userId": int64(7), "finalScore": 40,
	})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, store.saved)
}

// signalStore closes saved once a score lands, so tests can wait for the
// fire-and-forget reaction deterministically.
type signalStore struct {
	*fakeStore
	saved chan struct{}
}

func (s *signalStore) SaveScore(ctx context.Context, userID int64, score int) error {
	err := s.fakeStore.SaveScore(ctx, userID, score)
	close(s.saved)
	return err
}
