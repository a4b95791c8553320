package brain

// Scorer rates how much its owner wants a choice right now, in [0, 1].
// Scorers read only their owner's own state.
type Scorer interface {
	Score() float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func() float64

// Score calls f and clamps the result to [0, 1].
func (f ScorerFunc) Score() float64 { return Clamp01(f()) }

// Fixed always returns the same score.
type Fixed float64

// Score returns the fixed value clamped to [0, 1].
func (f Fixed) Score() float64 { return Clamp01(float64(f)) }

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
