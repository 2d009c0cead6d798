//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/bananagame/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_QuestionBeforeStart(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("early_bird", "securepass123")

	resp := env.AuthPOST("/game/question", nil, token)
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	env.DecodeBody(resp, &body)
	assert.Equal(t, "INVALID_STATE", body.Code)
}

func TestGame_FullRound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterUser("full_round", "securepass123")

	resp := env.AuthPOST("/game/start", nil, token)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.AuthPOST("/game/question", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var question struct {
		Question string `json:"question"`
		Solution *int   `json:"solution"`
	}
	env.DecodeBody(resp, &question)
	resp.Body.Close()
	assert.NotEmpty(t, question.Question)
	assert.Nil(t, question.Solution, "solution must never reach the client")

	resp = env.AuthPOST("/game/answer", map[string]int{"answer": testutil.TestSolution}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var answer struct {
		IsCorrect bool `json:"isCorrect"`
		Score     int  `json:"score"`
	}
	env.DecodeBody(resp, &answer)
	resp.Body.Close()
	assert.True(t, answer.IsCorrect)
	assert.Equal(t, 10, answer.Score)

	resp = env.AuthPOST("/game/end", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var end struct {
		FinalScore int `json:"finalScore"`
	}
	env.DecodeBody(resp, &end)
	resp.Body.Close()
	assert.Equal(t, 10, end.FinalScore)

	// Score persistence runs off the request goroutine; poll until the row
	// lands.
	require.Eventually(t, func() bool {
		resp := env.AuthGET("/users/me/highscore", token)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var high struct {
			HighScore int `json:"highScore"`
		}
		env.DecodeBody(resp, &high)
		return high.HighScore == 10
	}, 5*time.Second, 50*time.Millisecond, "score for user %d never persisted", userID)
}

func TestGame_WrongAnswerScoresNothing(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("wrong_answer", "securepass123")

	resp := env.AuthPOST("/game/start", nil, token)
	resp.Body.Close()
	resp = env.AuthPOST("/game/question", nil, token)
	resp.Body.Close()

	resp = env.AuthPOST("/game/answer", map[string]int{"answer": testutil.TestSolution + 1}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var answer struct {
		IsCorrect bool `json:"isCorrect"`
		Score     int  `json:"score"`
	}
	env.DecodeBody(resp, &answer)
	resp.Body.Close()
	assert.False(t, answer.IsCorrect)
	assert.Equal(t, 0, answer.Score)
}

func TestGame_AnswerValidation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("bad_answer", "securepass123")

	resp := env.AuthPOST("/game/start", nil, token)
	resp.Body.Close()

	resp = env.AuthPOST("/game/answer", map[string]string{"answer": "seven"}, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLeaderboard_RanksBestScorePerUser(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("leader", "securepass123")

	playRound := func() {
		resp := env.AuthPOST("/game/start", nil, token)
		resp.Body.Close()
		resp = env.AuthPOST("/game/question", nil, token)
		resp.Body.Close()
		resp = env.AuthPOST("/game/answer", map[string]int{"answer": testutil.TestSolution}, token)
		resp.Body.Close()
		resp = env.AuthPOST("/game/end", nil, token)
		resp.Body.Close()
	}
	playRound()
	playRound()

	require.Eventually(t, func() bool {
		resp := env.AuthGET("/leaderboard", token)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		var body struct {
			HighScores []struct {
				Username string `json:"username"`
				Score    int    `json:"score"`
			} `json:"highScores"`
		}
		env.DecodeBody(resp, &body)
		// One row per user, best score only.
		return len(body.HighScores) == 1 &&
			body.HighScores[0].Username == "leader" &&
			body.HighScores[0].Score == 10
	}, 5*time.Second, 50*time.Millisecond)
}

func TestLeaderboard_LimitValidation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("limit_check", "securepass123")

	resp := env.AuthGET("/leaderboard?limit=0", token)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.AuthGET("/leaderboard?limit=abc", token)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Over-large limits are clamped, not rejected.
	resp = env.AuthGET("/leaderboard?limit=101", token)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEvents_HistoryAndClear(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterUser("historian", "securepass123")

	resp := env.AuthPOST("/game/start", nil, token)
	resp.Body.Close()
	resp = env.AuthPOST("/game/question", nil, token)
	resp.Body.Close()

	resp = env.AuthGET("/events/history", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history struct {
		Events []struct {
			Kind string `json:"kind"`
		} `json:"events"`
	}
	env.DecodeBody(resp, &history)
	resp.Body.Close()

	kinds := make([]string, 0, len(history.Events))
	for _, rec := range history.Events {
		kinds = append(kinds, rec.Kind)
	}
	assert.Contains(t, kinds, "user.registered")
	assert.Contains(t, kinds, "game.started")
	assert.Contains(t, kinds, "question.loaded")

	resp = env.AuthDELETE("/events/history", token)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.AuthGET("/events/history", token)
	env.DecodeBody(resp, &history)
	resp.Body.Close()
	assert.Empty(t, history.Events)
}
