package dynamo

import (
	"context"
	"sync"
)

// Outcome pairs a run result with the error it ended on.
type Outcome struct {
	Result *Result
	Err    error
}

// Compare runs every simulator on the same problem concurrently. Each run
// owns its trajectory and history; outcomes are returned in input order.
func Compare(ctx context.Context, f Func, cfg Config, sims ...*Simulator) []Outcome {
	outcomes := make([]Outcome, len(sims))

	var wg sync.WaitGroup
	for i, s := range sims {
		wg.Add(1)
		go func(idx int, s *Simulator) {
			defer wg.Done()
			res, err := s.Run(ctx, f, cfg)
			outcomes[idx] = Outcome{Result: res, Err: err}
		}(i, s)
	}

	wg.Wait()
	return outcomes
}
