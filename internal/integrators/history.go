package integrators

// history is the sliding window of the two most recently accepted states
// used by the two-step schemes. It only exists once the bootstrap step has
// produced x_1, so it is never empty.
type history struct {
	prev float64 // x_{n-1}
	curr float64 // x_n
}

func newHistory(x0, x1 float64) *history {
	return &history{prev: x0, curr: x1}
}

// push accepts x_{n+1} and evicts x_{n-1}.
func (h *history) push(x float64) {
	h.prev, h.curr = h.curr, x
}
