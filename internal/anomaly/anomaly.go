// Package anomaly runs rule-based checks over an assembled timeline.
//
// Three independent checks run in a fixed order: inactivity gaps, novel
// locations, and daily volume spikes. Their findings are concatenated and
// deduplicated by rendered text, preserving first-seen order, so repeated
// runs over the same timeline produce identical output. The detector is
// purely diagnostic; it has no side effects beyond its return value.
package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/campustrail/campustrail/internal/events"
	"github.com/campustrail/campustrail/internal/timeline"
)

// Kind categorizes a detected anomaly.
type Kind string

const (
	KindInactivityGap Kind = "inactivity_gap"
	KindNovelLocation Kind = "novel_location"
	KindVolumeSpike   Kind = "volume_spike"
)

// Severity indicates the importance level of an anomaly.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

// Record is one detected anomaly: a structured kind plus the rendered,
// human-readable detail used for deduplication.
type Record struct {
	Kind      Kind
	Severity  Severity
	Timestamp time.Time
	Detail    string
}

// Config holds the detection thresholds.
type Config struct {
	// GapDays is the hard inactivity threshold in whole days. Stricter
	// than the assembler's inactivity flag on purpose: the flag marks a
	// patchy timeline, this marks a finding.
	GapDays int
	// SpikeSigma is the number of standard deviations a daily event count
	// must deviate from the mean to be flagged.
	SpikeSigma float64
	// ExcludeLabLocations treats lab-booking locations as a known-allowed
	// set for novelty detection. Scheduled lab sessions are planned, not
	// anomalous.
	ExcludeLabLocations bool
}

// DefaultConfig returns the canonical thresholds.
func DefaultConfig() Config {
	return Config{
		GapDays:             14,
		SpikeSigma:          2.0,
		ExcludeLabLocations: true,
	}
}

// Detect runs all checks over a timeline and returns the deduplicated
// findings in detection order.
func Detect(tl *timeline.Timeline, cfg Config) []Record {
	var found []Record
	found = append(found, detectGaps(tl, cfg.GapDays)...)
	found = append(found, detectNovelLocations(tl, cfg.ExcludeLabLocations)...)
	found = append(found, detectVolumeSpikes(tl, cfg.SpikeSigma)...)
	return dedupe(found)
}

// detectGaps flags events preceded by more than gapDays of silence.
func detectGaps(tl *timeline.Timeline, gapDays int) []Record {
	var out []Record
	for i, gap := range tl.GapDays {
		if gap <= gapDays {
			continue
		}
		e := &tl.Events[i]
		out = append(out, Record{
			Kind:      KindInactivityGap,
			Severity:  SeverityWarning,
			Timestamp: e.Timestamp,
			Detail:    fmt.Sprintf("Inactivity gap of %d days before %s", gap, e.Timestamp.Format("2006-01-02")),
		})
	}
	return out
}

// detectNovelLocations flags first visits to never-seen-before locations.
// The very first location on the timeline establishes a baseline and is not
// flagged. When excludeLab is set, locations observed through lab bookings
// are skipped outright and never enter the seen set, mirroring how planned
// sessions are scheduled in advance. Events without a location are ignored.
func detectNovelLocations(tl *timeline.Timeline, excludeLab bool) []Record {
	allowed := make(map[string]bool)
	if excludeLab {
		for i := range tl.Events {
			e := &tl.Events[i]
			if e.Type == events.TypeLabBooking && e.HasLocation() {
				allowed[e.Location] = true
			}
		}
	}

	seen := make(map[string]bool)
	var out []Record
	for i := range tl.Events {
		e := &tl.Events[i]
		if !e.HasLocation() {
			continue
		}
		if allowed[e.Location] {
			continue
		}
		if !seen[e.Location] && len(seen) > 0 {
			out = append(out, Record{
				Kind:      KindNovelLocation,
				Severity:  SeverityWarning,
				Timestamp: e.Timestamp,
				Detail:    fmt.Sprintf("Unexpected visit to location '%s' at %s", e.Location, e.Timestamp.Format("2006-01-02 15:04:05")),
			})
		}
		seen[e.Location] = true
	}
	return out
}

// detectVolumeSpikes flags days whose event count deviates from the mean
// daily count by more than sigma sample standard deviations. Requires at
// least two distinct days of data; with fewer, mean and deviation are
// treated as zero and nothing is flagged.
func detectVolumeSpikes(tl *timeline.Timeline, sigma float64) []Record {
	counts := make(map[string]int)
	var days []string
	for i := range tl.Events {
		day := tl.Events[i].Timestamp.Format("2006-01-02")
		if _, ok := counts[day]; !ok {
			days = append(days, day)
		}
		counts[day]++
	}
	if len(days) < 2 {
		return nil
	}

	mean := 0.0
	for _, day := range days {
		mean += float64(counts[day])
	}
	mean /= float64(len(days))

	variance := 0.0
	for _, day := range days {
		d := float64(counts[day]) - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(days)-1))
	if std == 0 {
		return nil
	}

	var out []Record
	for _, day := range days {
		if math.Abs(float64(counts[day])-mean) > sigma*std {
			ts, _ := time.Parse("2006-01-02", day)
			out = append(out, Record{
				Kind:      KindVolumeSpike,
				Severity:  SeverityAlert,
				Timestamp: ts,
				Detail:    fmt.Sprintf("Unusual activity level (%d events) on %s", counts[day], day),
			})
		}
	}
	return out
}

// dedupe drops records whose rendered detail was already emitted, keeping
// first-seen order.
func dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if seen[r.Detail] {
			continue
		}
		seen[r.Detail] = true
		out = append(out, r)
	}
	return out
}
