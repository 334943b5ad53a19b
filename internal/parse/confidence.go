package parse

// Score derives the final confidence from the engine's recognition
// confidence. Heuristic parsing adds uncertainty beyond raw recognition
// error, so the score is discounted by 20%; the floor of 60 keeps a
// successfully parsed receipt from reading as unusable when recognition was
// merely average.
func Score(recognitionConfidence float64) float64 {
	score := recognitionConfidence * 0.8
	if score < 60 {
		return 60
	}
	if score > 100 {
		return 100
	}
	return score
}
