// Search statistics. Stats mirrors every counter in two places: plain
// atomics for cheap in-process snapshots, and Prometheus counters for
// scraping when the caller registers them.
package matcher

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats tracks what a matcher's searches have done. One Stats value
// may be shared by any number of concurrent searches.
type Stats struct {
	classifiedN atomic.Int64
	branchesN   atomic.Int64
	prunedN     atomic.Int64
	solutionsN  atomic.Int64
	budgetN     atomic.Int64

	classified *prometheus.CounterVec
	branches   *prometheus.CounterVec
	pruned     prometheus.Counter
	solutions  prometheus.Counter
	budget     prometheus.Counter
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	ConstraintsClassified int64
	EFABranchesTried      int64
	BranchesPruned        int64
	SolutionsYielded      int64
	BudgetAborts          int64
}

// NewStats creates a Stats value. When reg is non-nil the Prometheus
// counters are registered with it (register a given Stats value at
// most once per registry); with a nil reg the counters exist but are
// not exported.
func NewStats(reg prometheus.Registerer) *Stats {
	factory := promauto.With(reg)
	return &Stats{
		classified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomatcher_constraints_classified_total",
			Help: "Constraints classified, by complexity class.",
		}, []string{"class"}),
		branches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomatcher_efa_branches_total",
			Help: "EFA instantiation branches tried, by kind.",
		}, []string{"kind"}),
		pruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomatcher_branches_pruned_total",
			Help: "Search branches abandoned by failure, conflict or capture.",
		}),
		solutions: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomatcher_solutions_total",
			Help: "Solutions yielded across all searches.",
		}),
		budget: factory.NewCounter(prometheus.CounterOpts{
			Name: "gomatcher_budget_aborts_total",
			Help: "Searches aborted by their step budget.",
		}),
	}
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ConstraintsClassified: s.classifiedN.Load(),
		EFABranchesTried:      s.branchesN.Load(),
		BranchesPruned:        s.prunedN.Load(),
		SolutionsYielded:      s.solutionsN.Load(),
		BudgetAborts:          s.budgetN.Load(),
	}
}

func (s *Stats) recordClassified(class ComplexityClass) {
	s.classifiedN.Add(1)
	s.classified.WithLabelValues(class.String()).Inc()
}

func (s *Stats) recordBranch(kind string) {
	s.branchesN.Add(1)
	s.branches.WithLabelValues(kind).Inc()
}

func (s *Stats) recordPruned() {
	s.prunedN.Add(1)
	s.pruned.Inc()
}

func (s *Stats) recordSolution() {
	s.solutionsN.Add(1)
	s.solutions.Inc()
}

func (s *Stats) recordBudgetAbort() {
	s.budgetN.Add(1)
	s.budget.Inc()
}
