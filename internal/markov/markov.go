// Package markov builds an empirical first-order transition model over the
// location sequence of a timeline and predicts the most probable next
// location. The model needs no training data, is explainable, and returns
// no prediction at all when there is no supporting transition evidence.
package markov

import (
	"github.com/campustrail/campustrail/internal/timeline"
)

// Row holds the outgoing transitions from one location. The order slice
// records first-seen destination order so that argmax ties resolve
// deterministically.
type Row struct {
	order  []string
	counts map[string]int
	total  int
}

// Prob returns the empirical probability of moving to a destination.
func (r *Row) Prob(to string) float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.counts[to]) / float64(r.total)
}

// Destinations returns the observed destinations in first-seen order.
func (r *Row) Destinations() []string {
	return r.order
}

// Table is the transition model: one row per location with at least one
// outgoing transition. Built fresh per timeline; never persisted.
type Table struct {
	order []string
	rows  map[string]*Row
}

// Build constructs the transition table from a timeline. Events without a
// location are dropped first; every consecutive pair of remaining locations
// counts, including self-loops.
func Build(tl *timeline.Timeline) *Table {
	t := &Table{rows: make(map[string]*Row)}

	prev := ""
	havePrev := false
	for i := range tl.Events {
		e := &tl.Events[i]
		if !e.HasLocation() {
			continue
		}
		if havePrev {
			t.add(prev, e.Location)
		}
		prev = e.Location
		havePrev = true
	}
	return t
}

func (t *Table) add(from, to string) {
	row, ok := t.rows[from]
	if !ok {
		row = &Row{counts: make(map[string]int)}
		t.rows[from] = row
		t.order = append(t.order, from)
	}
	if _, seen := row.counts[to]; !seen {
		row.order = append(row.order, to)
	}
	row.counts[to]++
	row.total++
}

// Row returns the outgoing transitions for a location, or ok=false when the
// location has none.
func (t *Table) Row(from string) (*Row, bool) {
	row, ok := t.rows[from]
	return row, ok
}

// Locations returns every source location in first-seen order.
func (t *Table) Locations() []string {
	return t.order
}

// Predict returns the most probable next location from the current one.
// Ties resolve to the destination seen first. Returns ok=false when the
// current location has no outgoing transitions; the model never fabricates
// a prediction without evidence.
func (t *Table) Predict(current string) (string, bool) {
	row, ok := t.rows[current]
	if !ok {
		return "", false
	}
	best := ""
	bestCount := -1
	for _, to := range row.order {
		if row.counts[to] > bestCount {
			best = to
			bestCount = row.counts[to]
		}
	}
	return best, true
}

// PredictNext builds the transition table for a timeline and predicts the
// location following the last known one. Returns ok=false when the timeline
// has no located events or the last location has no outgoing transitions.
func PredictNext(tl *timeline.Timeline) (string, bool) {
	current, ok := tl.LastLocation()
	if !ok {
		return "", false
	}
	return Build(tl).Predict(current)
}
