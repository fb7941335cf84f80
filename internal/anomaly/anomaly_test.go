package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrail/campustrail/internal/events"
	"github.com/campustrail/campustrail/internal/timeline"
)

func day(d int) time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, d-1)
}

func assemble(t *testing.T, evs []events.Event) *timeline.Timeline {
	t.Helper()
	tl := timeline.Assemble("E1", evs, timeline.Options{})
	return &tl
}

func swipe(ts time.Time, location string) events.Event {
	return events.Event{EntityID: "E1", Timestamp: ts, Type: events.TypeCardSwipe, Location: location}
}

func booking(ts time.Time, location string) events.Event {
	return events.Event{EntityID: "E1", Timestamp: ts, Type: events.TypeLabBooking, Location: location}
}

func kinds(records []Record) []Kind {
	out := make([]Kind, 0, len(records))
	for _, r := range records {
		out = append(out, r.Kind)
	}
	return out
}

func TestDetectGapAndNovelLocation(t *testing.T) {
	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		swipe(day(2), "R1"),
		swipe(day(3), "R1"),
		swipe(day(20), "R5"),
	})

	records := Detect(tl, DefaultConfig())
	require.Len(t, records, 2)

	assert.Equal(t, KindInactivityGap, records[0].Kind)
	assert.Equal(t, SeverityWarning, records[0].Severity)
	assert.Equal(t, "Inactivity gap of 17 days before 2024-03-20", records[0].Detail)

	assert.Equal(t, KindNovelLocation, records[1].Kind)
	assert.Equal(t, "Unexpected visit to location 'R5' at 2024-03-20 09:00:00", records[1].Detail)
}

func TestDetectGapBelowThreshold(t *testing.T) {
	// Exactly 14 whole days is not a finding; the threshold is strict.
	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		swipe(day(15), "R1"),
	})

	records := Detect(tl, DefaultConfig())
	assert.Empty(t, records)
}

func TestFirstLocationNotNovel(t *testing.T) {
	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		swipe(day(2), "R1"),
	})

	records := Detect(tl, DefaultConfig())
	assert.Empty(t, records)
}

func TestLabLocationsExcludedFromNovelty(t *testing.T) {
	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		booking(day(2), "LAB_A"),
		swipe(day(3), "LAB_A"),
	})

	records := Detect(tl, DefaultConfig())
	assert.Empty(t, records, "lab-booked locations are a known-allowed set")
}

func TestLabExclusionDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExcludeLabLocations = false

	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		booking(day(2), "LAB_A"),
	})

	records := Detect(tl, cfg)
	require.Len(t, records, 1)
	assert.Equal(t, KindNovelLocation, records[0].Kind)
	assert.Contains(t, records[0].Detail, "LAB_A")
}

func TestNoveltySkipsUnlocatedEvents(t *testing.T) {
	note := events.Event{EntityID: "E1", Timestamp: day(2), Type: events.TypeTextNote, Text: "seen near dorms"}

	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		note,
		swipe(day(3), "R1"),
	})

	records := Detect(tl, DefaultConfig())
	assert.Empty(t, records)
}

func TestDetectVolumeSpike(t *testing.T) {
	// Nine quiet days of one event each, then twenty on the tenth:
	// mean 2.9, sample std ~6.0, so 20 sits ~2.8 deviations out.
	var evs []events.Event
	for d := 1; d <= 9; d++ {
		evs = append(evs, swipe(day(d), "R1"))
	}
	for i := 0; i < 20; i++ {
		evs = append(evs, swipe(day(10).Add(time.Duration(i)*time.Minute), "R1"))
	}

	records := Detect(assemble(t, evs), DefaultConfig())
	require.Len(t, records, 1)
	assert.Equal(t, KindVolumeSpike, records[0].Kind)
	assert.Equal(t, SeverityAlert, records[0].Severity)
	assert.Equal(t, "Unusual activity level (20 events) on 2024-03-10", records[0].Detail)
}

func TestVolumeSpikeNeedsSpread(t *testing.T) {
	// A single busy day with no other days has no deviation to measure.
	var evs []events.Event
	for i := 0; i < 30; i++ {
		evs = append(evs, swipe(day(1).Add(time.Duration(i)*time.Minute), "R1"))
	}

	records := Detect(assemble(t, evs), DefaultConfig())
	assert.Empty(t, records)
}

func TestVolumeSpikeUniformDays(t *testing.T) {
	// Identical daily counts give zero deviation; nothing flags.
	var evs []events.Event
	for d := 1; d <= 5; d++ {
		evs = append(evs, swipe(day(d), "R1"), swipe(day(d).Add(time.Hour), "R1"))
	}

	records := Detect(assemble(t, evs), DefaultConfig())
	assert.Empty(t, records)
}

func TestDetectDeterministic(t *testing.T) {
	tl := assemble(t, []events.Event{
		swipe(day(1), "R1"),
		swipe(day(2), "R2"),
		swipe(day(20), "R3"),
	})

	first := Detect(tl, DefaultConfig())
	second := Detect(tl, DefaultConfig())
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Detail, second[i].Detail)
	}
	assert.Equal(t, []Kind{KindInactivityGap, KindNovelLocation, KindNovelLocation}, kinds(first))
}

func TestDedupeKeepsFirstSeen(t *testing.T) {
	records := dedupe([]Record{
		{Kind: KindNovelLocation, Detail: "a"},
		{Kind: KindVolumeSpike, Detail: "b"},
		{Kind: KindNovelLocation, Detail: "a"},
	})

	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Detail)
	assert.Equal(t, "b", records[1].Detail)
}

func TestEmptyTimeline(t *testing.T) {
	records := Detect(assemble(t, nil), DefaultConfig())
	assert.Empty(t, records)
}
