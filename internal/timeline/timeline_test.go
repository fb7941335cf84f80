package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrail/campustrail/internal/events"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
}

func swipe(entityID string, ts time.Time, location string) events.Event {
	return events.Event{EntityID: entityID, Timestamp: ts, Type: events.TypeCardSwipe, Location: location}
}

func TestAssembleOrdersByTimestamp(t *testing.T) {
	pool := []events.Event{
		swipe("E1", day(3), "R3"),
		swipe("E1", day(1), "R1"),
		swipe("E1", day(2), "R2"),
		swipe("E2", day(1), "X1"), // other entity, excluded
	}

	tl := Assemble("E1", pool, Options{})

	require.Equal(t, 3, tl.Len())
	for i := 1; i < tl.Len(); i++ {
		assert.False(t, tl.Events[i].Timestamp.Before(tl.Events[i-1].Timestamp))
	}
	assert.Equal(t, "R1", tl.Events[0].Location)
	for i := range tl.Events {
		assert.Equal(t, "E1", tl.Events[i].EntityID)
	}
}

func TestAssembleTieBreaksBySourcePriority(t *testing.T) {
	at := day(5)
	pool := []events.Event{
		{EntityID: "E1", Timestamp: at, Type: events.TypeLibraryCheckout, Location: "BK_1"},
		{EntityID: "E1", Timestamp: at, Type: events.TypeCCTVSighting, Location: "HALL"},
		{EntityID: "E1", Timestamp: at, Type: events.TypeCardSwipe, Location: "GATE"},
		{EntityID: "E1", Timestamp: at, Type: events.TypeWiFiLog, Location: "AP_1"},
	}

	tl := Assemble("E1", pool, Options{})

	require.Equal(t, 4, tl.Len())
	assert.Equal(t, events.TypeCardSwipe, tl.Events[0].Type)
	assert.Equal(t, events.TypeCCTVSighting, tl.Events[1].Type)
	assert.Equal(t, events.TypeWiFiLog, tl.Events[2].Type)
	assert.Equal(t, events.TypeLibraryCheckout, tl.Events[3].Type)
}

func TestAssembleDateFilterIsInclusive(t *testing.T) {
	pool := []events.Event{
		swipe("E1", day(1), "R1"),
		swipe("E1", day(2), "R2"),
		swipe("E1", day(3), "R3"),
	}

	tl := Assemble("E1", pool, Options{Start: day(2), End: day(3)})

	require.Equal(t, 2, tl.Len())
	assert.Equal(t, "R2", tl.Events[0].Location)
	assert.Equal(t, "R3", tl.Events[1].Location)
}

func TestAssembleEmptyRangeYieldsEmptyTimeline(t *testing.T) {
	pool := []events.Event{swipe("E1", day(2), "R1")}

	tl := Assemble("E1", pool, Options{Start: day(5), End: day(3)})

	assert.Equal(t, 0, tl.Len())
	assert.Empty(t, tl.Counts)
	assert.False(t, tl.InactivityFlag)
}

func TestAssembleTypeFilter(t *testing.T) {
	pool := []events.Event{
		swipe("E1", day(1), "R1"),
		{EntityID: "E1", Timestamp: day(2), Type: events.TypeWiFiLog, Location: "AP_1"},
		{EntityID: "E1", Timestamp: day(3), Type: events.TypeTextNote, Location: "misc"},
	}

	tl := Assemble("E1", pool, Options{Types: []events.Type{events.TypeCardSwipe, events.TypeTextNote}})

	require.Equal(t, 2, tl.Len())
	assert.Equal(t, 1, tl.Counts[events.TypeCardSwipe])
	assert.Equal(t, 1, tl.Counts[events.TypeTextNote])
	assert.Zero(t, tl.Counts[events.TypeWiFiLog])
}

func TestAssembleGapsAndInactivityFlag(t *testing.T) {
	pool := []events.Event{
		swipe("E1", day(1), "R1"),
		swipe("E1", day(2), "R1"),
		swipe("E1", day(3), "R1"),
		swipe("E1", day(20), "R5"),
	}

	tl := Assemble("E1", pool, Options{})

	require.Equal(t, 4, tl.Len())
	assert.Equal(t, []int{0, 1, 1, 17}, tl.GapDays)
	assert.True(t, tl.InactivityFlag)
}

func TestAssembleNoGapBelowThreshold(t *testing.T) {
	pool := []events.Event{
		swipe("E1", day(1), "R1"),
		swipe("E1", day(8), "R1"), // exactly 7 days, not above threshold
	}

	tl := Assemble("E1", pool, Options{})

	assert.Equal(t, []int{0, 7}, tl.GapDays)
	assert.False(t, tl.InactivityFlag)
}

func TestAssembleUnknownEntityIsEmptyNotError(t *testing.T) {
	pool := []events.Event{swipe("E1", day(1), "R1")}

	tl := Assemble("E404", pool, Options{})

	assert.Equal(t, "E404", tl.EntityID)
	assert.Equal(t, 0, tl.Len())
	assert.Empty(t, tl.Counts)
	assert.False(t, tl.InactivityFlag)
}

func TestAssembleSingleEventHasNoGaps(t *testing.T) {
	pool := []events.Event{swipe("E1", day(1), "R1")}

	tl := Assemble("E1", pool, Options{})

	assert.Equal(t, []int{0}, tl.GapDays)
	assert.False(t, tl.InactivityFlag)
}

func TestLastLocationSkipsEmpty(t *testing.T) {
	pool := []events.Event{
		swipe("E1", day(1), "R1"),
		{EntityID: "E1", Timestamp: day(2), Type: events.TypeTextNote}, // no location
	}

	tl := Assemble("E1", pool, Options{})

	last, ok := tl.LastLocation()
	require.True(t, ok)
	assert.Equal(t, "R1", last)
}
