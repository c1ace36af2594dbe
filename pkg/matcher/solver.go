// The matcher search. Given a constraint set, the solver yields every
// substitution set that makes all constraint patterns structurally
// equal (under de Bruijn encoding) to their expressions.
//
// # Algorithm
//
// The search is a recursive descent over problems. Each step picks the
// constraint of lowest complexity (ties broken by insertion order) and
// dispatches on its class:
//
//   - Failure anywhere prunes the branch.
//   - Success constraints are dropped; an empty problem yields its
//     accumulated solution.
//   - Instantiation commits the pattern metavariable to the
//     expression, after the capture guard passes, and rewrites the
//     remaining patterns.
//   - Children replaces the constraint by the element-wise pairing of
//     the two child lists.
//   - EFA branches over the candidate instantiations of the function
//     metavariable: Constant, then each permitted Projection, then
//     Imitation of the expression head. Branches run on copies of the
//     problem, so backtracking is a return.
//
// Every branch strictly shrinks the pair (total constraint weight,
// EFA count): non-EFA steps reduce weight, Constant and Projection
// close their constraint, and Imitation reduces to children over
// strictly smaller expressions. The stream is therefore finite for
// any constraint set without EFA-on-EFA cycles.
//
// # Capture Guard
//
// A substitution is committed only when its replacement is
// marker-closed: a free de Bruijn marker in a replacement would be
// captured by (or dangle past) the binders enclosing some occurrence
// of the metavariable. Under the encoding this is index arithmetic,
// not name reasoning; see IsFreeToReplace.
package matcher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	set "github.com/hashicorp/go-set/v3"
)

// errStopSearch unwinds the search once MaxSolutions is reached. It
// never escapes the solver.
var errStopSearch = errors.New("stop search")

// EFA branch kinds, as reported to Stats.
const (
	branchConstant   = "constant"
	branchProjection = "projection"
	branchImitation  = "imitation"
)

// Matcher runs higher-order pattern matching searches. A single
// Matcher may serve any number of concurrent Solutions calls; each
// search owns its problem state exclusively.
type Matcher struct {
	logger *slog.Logger
	stats  *Stats
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLogger routes search tracing (Debug level) to l.
func WithLogger(l *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStats shares a Stats value across this matcher's searches.
func WithStats(s *Stats) MatcherOption {
	return func(m *Matcher) {
		if s != nil {
			m.stats = s
		}
	}
}

// NewMatcher creates a matcher. Tracing is discarded and statistics
// stay unexported unless configured otherwise.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		logger: slog.New(slog.DiscardHandler),
		stats:  NewStats(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the matcher's statistics.
func (m *Matcher) Stats() *Stats { return m.stats }

// Options configure one search.
type Options struct {
	// MaxSolutions stops the search after that many solutions;
	// zero or negative means unbounded.
	MaxSolutions int

	// StepBudget aborts the search with ErrBudgetExceeded after that
	// many dispatch steps; zero or negative means unbounded.
	StepBudget int

	// Direct restricts EFA enumeration to the Projection and
	// Imitation branches, which can bind structure to the EFA
	// arguments. The Constant branch is still taken when the
	// all-constant short-circuit proves it is the only one possible.
	Direct bool
}

// Solutions starts a search over the given constraints and returns its
// lazy solution stream. The search runs in its own goroutine and makes
// progress only while the consumer drains the stream; Close releases
// it. For a fixed constraint list and options the yielded sequence is
// deterministic.
func (m *Matcher) Solutions(ctx context.Context, constraints []*Constraint, opts Options) *SolutionStream {
	runCtx, cancel := context.WithCancel(ctx)
	stream := newSolutionStream(cancel)

	problem := NewProblem(constraints...)
	originalMetas := set.New[string](0)
	for _, c := range problem.Constraints() {
		collectMetavariableNames(c.Pattern(), originalMetas)
	}

	run := &searchRun{
		matcher:       m,
		stream:        stream,
		ctx:           runCtx,
		done:          runCtx.Done(),
		budget:        opts.StepBudget,
		maxSolutions:  opts.MaxSolutions,
		direct:        opts.Direct,
		originalMetas: originalMetas,
		logger:        m.logger.With("run", uuid.NewString()),
	}
	run.trace = run.logger.Enabled(runCtx, slog.LevelDebug)

	go func() {
		defer cancel()
		err := run.solve(problem)
		switch {
		case errors.Is(err, errStopSearch):
			err = nil
		case errors.Is(err, ErrBudgetExceeded):
			m.stats.recordBudgetAbort()
		case err == nil && runCtx.Err() != nil:
			err = runCtx.Err()
		}
		stream.finish(err)
	}()
	return stream
}

// FirstSolution drives a search until its first solution. It returns
// (nil, nil) when the stream exhausts without one — NoSolution is a
// value, not an error — and a non-nil error only for budget overruns
// or cancellation.
func (m *Matcher) FirstSolution(ctx context.Context, constraints []*Constraint, opts Options) (*Solution, error) {
	opts.MaxSolutions = 1
	stream := m.Solutions(ctx, constraints, opts)
	defer stream.Close()
	sol, ok := stream.Next()
	if !ok {
		return nil, stream.Err()
	}
	return sol, nil
}

// searchRun is the per-search state shared down the recursion.
type searchRun struct {
	matcher       *Matcher
	stream        *SolutionStream
	ctx           context.Context
	done          <-chan struct{}
	logger        *slog.Logger
	trace         bool
	budget        int
	steps         int
	maxSolutions  int
	emitted       int
	direct        bool
	originalMetas *set.Set[string]
}

// tick accounts one dispatch step against the budget and the context.
func (r *searchRun) tick() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.steps++
	if r.budget > 0 && r.steps > r.budget {
		return ErrBudgetExceeded
	}
	return nil
}

// solve runs the triage loop on p until the branch is pruned, yields,
// or the search must stop. A nil return means "branch done, keep
// searching"; any error unwinds the whole search.
func (r *searchRun) solve(p *Problem) error {
	for {
		if err := r.tick(); err != nil {
			return err
		}

		idx, failed := r.pickConstraint(p)
		if failed {
			r.matcher.stats.recordPruned()
			return nil
		}
		if idx < 0 {
			return r.emit(p)
		}

		c := p.Constraints()[idx]
		class := c.Complexity()
		r.matcher.stats.recordClassified(class)
		if r.trace {
			r.logger.Debug("dispatch", "problem", p.ID(), "class", class.String(), "constraint", c.String())
		}

		switch class {
		case ClassSuccess:
			p.removeAt(idx)

		case ClassInstantiation:
			meta := c.Pattern().(*Symbol)
			repl := c.Expression()
			p.removeAt(idx)
			if !r.commit(p, newEncodedSubstitution(meta.copySymbol(), repl)) {
				return nil
			}

		case ClassChildren:
			kids, err := c.Children()
			if err != nil {
				return err
			}
			p.removeAt(idx)
			for _, kid := range kids {
				p.Add(kid)
			}

		case ClassEFA:
			return r.branchEFA(p, c)
		}
	}
}

// pickConstraint returns the index of the lowest-weight constraint,
// breaking ties by insertion order, and whether any constraint has
// already failed. idx is -1 for an empty (fully solved) problem.
func (r *searchRun) pickConstraint(p *Problem) (idx int, failed bool) {
	idx = -1
	best := 0
	for i, c := range p.Constraints() {
		w := c.Weight()
		if w == weightFailure {
			return i, true
		}
		if idx < 0 || w < best {
			idx, best = i, w
		}
	}
	return idx, false
}

// commit applies s to the problem after the capture guard. It returns
// false when the branch must be pruned.
func (r *searchRun) commit(p *Problem, s *Substitution) bool {
	if minFreeMarkerReach(s.Replacement()) > 0 {
		// A free marker in the replacement either dangles past the
		// pattern or is captured at some occurrence; both reject.
		if r.trace {
			r.logger.Debug("capture guard rejected", "problem", p.ID(), "substitution", s.String())
		}
		r.matcher.stats.recordPruned()
		return false
	}
	for _, c := range p.Constraints() {
		if !IsFreeToReplace(s.Replacement(), c.Pattern(), s.Metavariable()) {
			r.matcher.stats.recordPruned()
			return false
		}
	}
	if !p.Substitute(s) {
		if r.trace {
			r.logger.Debug("conflicting assignment", "problem", p.ID(), "substitution", s.String())
		}
		r.matcher.stats.recordPruned()
		return false
	}
	return true
}

// emit yields the accumulated solution, restricted to the
// metavariables of the original constraint set.
func (r *searchRun) emit(p *Problem) error {
	sol := p.Solution().restrictedTo(r.originalMetas)
	if !r.stream.put(r.done, sol) {
		return r.ctx.Err()
	}
	r.matcher.stats.recordSolution()
	if r.trace {
		r.logger.Debug("solution", "problem", p.ID(), "solution", sol.String())
	}
	r.emitted++
	if r.maxSolutions > 0 && r.emitted >= r.maxSolutions {
		return errStopSearch
	}
	return nil
}

// efaCandidate pairs a branch kind with the substitution it tries.
type efaCandidate struct {
	kind string
	sub  *Substitution
}

// branchEFA enumerates the candidate instantiations for an EFA
// constraint and recurses into each on a copy of the problem.
func (r *searchRun) branchEFA(p *Problem, c *Constraint) error {
	for _, cand := range r.efaCandidates(c) {
		r.matcher.stats.recordBranch(cand.kind)
		if r.trace {
			r.logger.Debug("efa branch", "problem", p.ID(), "kind", cand.kind, "substitution", cand.sub.String())
		}
		branch := p.Copy()
		if !r.commit(branch, cand.sub) {
			continue
		}
		if err := r.solve(branch); err != nil {
			return err
		}
	}
	return nil
}

// efaCandidates builds the branch list for an EFA constraint, in the
// deterministic order Constant, Projection (ascending argument index),
// Imitation. Candidates whose replacement is not marker-closed are
// dropped here; they could only produce captured solutions.
func (r *searchRun) efaCandidates(c *Constraint) []efaCandidate {
	f, args, ok := EFAParts(c.Pattern())
	if !ok {
		return nil
	}
	n := len(args)
	e := c.Expression()

	constant := efaCandidate{
		kind: branchConstant,
		sub:  newEncodedSubstitution(f.copySymbol(), newAbstraction(n, shiftMarkers(e, 1, 0))),
	}
	if c.CanBeOnlyConstantEFA() {
		// Every argument is closed and absent from the expression: no
		// projection or imitation branch can succeed.
		return r.closedCandidates(constant)
	}

	var candidates []efaCandidate
	if !r.direct {
		candidates = append(candidates, constant)
	}

	for k := 0; k < n; k++ {
		if !c.CanBeAProjectionEFA(k) {
			continue
		}
		candidates = append(candidates, efaCandidate{
			kind: branchProjection,
			sub:  newEncodedSubstitution(f.copySymbol(), newAbstraction(n, newDeBruijnMarker(0, k, ""))),
		})
	}

	if imitation, ok := r.imitationCandidate(f, n, e); ok {
		candidates = append(candidates, imitation)
	}

	return r.closedCandidates(candidates...)
}

// imitationCandidate builds F -> λx1...xn. h(H1(x...), ..., Hm(x...))
// for an application expression with head h and m arguments, each Hi a
// fresh EFA metavariable. Encoded binders (λ-headed applications) are
// not imitated: their matches are reached through the Constant and
// Projection branches, which under de Bruijn cover every α-variant
// without manufacturing markers inside generated bodies.
func (r *searchRun) imitationCandidate(f *Symbol, n int, e Expression) (efaCandidate, bool) {
	eApp, ok := e.(*Application)
	if !ok || eApp.Arity() < 2 {
		return efaCandidate{}, false
	}
	if _, _, isLambda := lambdaForm(eApp); isLambda {
		return efaCandidate{}, false
	}

	children := make([]Expression, 0, eApp.Arity())
	children = append(children, shiftMarkers(eApp.Head(), 1, 0))
	for range eApp.Children()[1:] {
		efaChildren := make([]Expression, 0, 2+n)
		efaChildren = append(efaChildren, NewSymbol(EFAHeadName), freshMetavariable())
		efaChildren = append(efaChildren, boundMarkers(n)...)
		children = append(children, newApplicationFromSlice(efaChildren))
	}
	body := newApplicationFromSlice(children)
	return efaCandidate{
		kind: branchImitation,
		sub:  newEncodedSubstitution(f.copySymbol(), newAbstraction(n, body)),
	}, true
}

// closedCandidates filters out candidates with free markers in their
// replacement, counting each as a pruned branch.
func (r *searchRun) closedCandidates(candidates ...efaCandidate) []efaCandidate {
	out := candidates[:0]
	for _, cand := range candidates {
		if minFreeMarkerReach(cand.sub.Replacement()) > 0 {
			r.matcher.stats.recordPruned()
			continue
		}
		out = append(out, cand)
	}
	return out
}
