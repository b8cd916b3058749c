package engine

// LineScores is indexed by the number of rows one lock cleared.
var LineScores = [...]int{
	0,
	100,
	300,
	500,
	800,
}

// ScoreFor clamps counts above four to the four-row value.
func ScoreFor(cleared int) int {
	if cleared <= 0 {
		return 0
	}
	if cleared >= len(LineScores) {
		return LineScores[len(LineScores)-1]
	}
	return LineScores[cleared]
}

// LevelFor is informational only; it does not change scoring or fall speed.
func LevelFor(lines int) int {
	return 1 + lines/10
}
