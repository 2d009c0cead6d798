package event

// Kind enumerates all game event kinds published on the bus.
type Kind string

const (
	GameStarted       Kind = "game.started"
	GameEnded         Kind = "game.ended"
	QuestionLoaded    Kind = "question.loaded"
	AnswerSubmitted   Kind = "answer.submitted"
	UserRegistered    Kind = "user.registered"
	UserLoggedIn      Kind = "user.logged_in"
	ScoreSaved        Kind = "score.saved"
	HighScoreAchieved Kind = "high_score.achieved"
)

// Kinds returns the closed set of event kinds, in declaration order.
func Kinds() []Kind {
	return []Kind{
		GameStarted,
		GameEnded,
		QuestionLoaded,
		AnswerSubmitted,
		UserRegistered,
		UserLoggedIn,
		ScoreSaved,
		HighScoreAchieved,
	}
}
