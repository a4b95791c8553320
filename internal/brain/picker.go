package brain

// Picker selects one choice from a score vector, or -1 for none.
type Picker interface {
	Pick(scores []float64) int
}

// Highest picks the maximum score; ties go to the earliest choice. A
// positive Threshold excludes scores below it, so a thinker whose scores
// all fall short idles. With Threshold 0 it is a plain argmax.
type Highest struct {
	Threshold float64
}

// Pick implements Picker.
func (h Highest) Pick(scores []float64) int {
	best := -1
	for i, s := range scores {
		if h.Threshold > 0 && s < h.Threshold {
			continue
		}
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}

// FirstToScore picks the first choice, in declaration order, whose score
// reaches Threshold.
type FirstToScore struct {
	Threshold float64
}

// Pick implements Picker.
func (f FirstToScore) Pick(scores []float64) int {
	for i, s := range scores {
		if s >= f.Threshold {
			return i
		}
	}
	return -1
}
