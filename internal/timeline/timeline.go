// Package timeline fuses normalized per-source events into one
// chronologically ordered sequence per entity.
package timeline

import (
	"sort"
	"time"

	"github.com/campustrail/campustrail/internal/events"
)

// DefaultInactivityDays is the gap, in whole days, above which a timeline
// is flagged as patchy. Deliberately looser than the anomaly detector's
// hard gap threshold; the two are separate signals.
const DefaultInactivityDays = 7

// Options control assembly. Zero values mean no filtering and the default
// inactivity threshold.
type Options struct {
	Start          time.Time     // inclusive lower timestamp bound; zero = unbounded
	End            time.Time     // inclusive upper timestamp bound; zero = unbounded
	Types          []events.Type // allow-list of event types; nil = all
	InactivityDays int           // gap threshold for the inactivity flag; 0 = default
}

// Timeline is the assembled, ordered event sequence for one entity.
// Timestamps are non-decreasing; GapDays[i] is the whole-day gap between
// Events[i-1] and Events[i], with GapDays[0] always zero. Immutable after
// assembly.
type Timeline struct {
	EntityID       string
	Events         []events.Event
	GapDays        []int
	Counts         map[events.Type]int
	InactivityFlag bool
}

// Len returns the number of events on the timeline.
func (t *Timeline) Len() int {
	return len(t.Events)
}

// LastLocation returns the most recent non-empty location, or ok=false when
// the timeline holds no located events.
func (t *Timeline) LastLocation() (string, bool) {
	for i := len(t.Events) - 1; i >= 0; i-- {
		if t.Events[i].HasLocation() {
			return t.Events[i].Location, true
		}
	}
	return "", false
}

// Assemble builds the timeline for one entity from the normalized event
// pool. An entity with no matching events yields an empty timeline with
// empty counts and a false inactivity flag; "not found" and "found but
// empty" are the same state. Pure function of its inputs.
func Assemble(entityID string, pool []events.Event, opts Options) Timeline {
	selected := make([]events.Event, 0)
	for i := range pool {
		e := pool[i]
		if e.EntityID != entityID {
			continue
		}
		if !opts.Start.IsZero() && e.Timestamp.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && e.Timestamp.After(opts.End) {
			continue
		}
		if opts.Types != nil && !typeAllowed(opts.Types, e.Type) {
			continue
		}
		selected = append(selected, e)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Before(&selected[j])
	})

	counts := make(map[events.Type]int)
	for i := range selected {
		counts[selected[i].Type]++
	}

	threshold := opts.InactivityDays
	if threshold <= 0 {
		threshold = DefaultInactivityDays
	}

	gaps := make([]int, len(selected))
	inactive := false
	for i := 1; i < len(selected); i++ {
		gaps[i] = wholeDays(selected[i].Timestamp.Sub(selected[i-1].Timestamp))
		if gaps[i] > threshold {
			inactive = true
		}
	}

	return Timeline{
		EntityID:       entityID,
		Events:         selected,
		GapDays:        gaps,
		Counts:         counts,
		InactivityFlag: inactive,
	}
}

func typeAllowed(allowed []events.Type, t events.Type) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// wholeDays truncates a duration to whole days. Durations here are never
// negative because the events are already sorted.
func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
