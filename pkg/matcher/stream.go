// Lazy solution streams. The solver produces solutions through a
// channel-backed stream: the search goroutine suspends between yields
// whenever the consumer has not yet asked for the next solution, and
// closing the stream cancels the search and releases all its state.
package matcher

import "sync"

// SolutionStream yields the solutions of one search in discovery
// order. For a fixed input the sequence is deterministic. An exhausted
// stream with a nil Err and no solutions delivered is the NoSolution
// outcome; it is a value, not an error.
type SolutionStream struct {
	ch     chan *Solution
	cancel func()

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

func newSolutionStream(cancel func()) *SolutionStream {
	return &SolutionStream{ch: make(chan *Solution), cancel: cancel}
}

// put hands a solution to the consumer, blocking until it is taken or
// the search is cancelled. It returns false when the search should
// stop.
func (s *SolutionStream) put(done <-chan struct{}, sol *Solution) bool {
	select {
	case s.ch <- sol:
		return true
	case <-done:
		return false
	}
}

// finish records the terminal error (nil for ordinary exhaustion) and
// closes the channel. Called exactly once by the search goroutine.
func (s *SolutionStream) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.ch)
}

// Next returns the next solution. ok is false once the stream is
// exhausted, cancelled, or aborted; Err distinguishes those cases.
func (s *SolutionStream) Next() (*Solution, bool) {
	sol, ok := <-s.ch
	return sol, ok
}

// Take returns up to n solutions, driving the search as needed.
func (s *SolutionStream) Take(n int) []*Solution {
	var out []*Solution
	for n <= 0 || len(out) < n {
		sol, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, sol)
	}
	return out
}

// All drives the stream to exhaustion and returns every solution.
func (s *SolutionStream) All() []*Solution {
	return s.Take(0)
}

// Err returns the terminal error once the stream has closed:
// ErrBudgetExceeded for a step-budget abort, a context error for
// cancellation, nil for ordinary exhaustion.
func (s *SolutionStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the search and releases its state. Close is safe to
// call more than once and after exhaustion.
func (s *SolutionStream) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		// Drain so a producer blocked on put can observe cancellation
		// and finish.
		go func() {
			for range s.ch {
			}
		}()
	})
}
