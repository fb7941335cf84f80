package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeLabelsRoundTrip(t *testing.T) {
	for _, typ := range AllTypes() {
		parsed, ok := ParseType(typ.String())
		require.True(t, ok, "label %q", typ.String())
		assert.Equal(t, typ, parsed)
	}

	_, ok := ParseType("carrier_pigeon")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Type(99).String())
}

func TestSourcePriorityOrder(t *testing.T) {
	// Declaration order is the tie-break priority and must not drift.
	want := []string{"card_swipe", "cctv_sighting", "wifi_log", "lab_booking", "text_note", "library_checkout"}
	got := make([]string, 0, len(want))
	for _, typ := range AllTypes() {
		got = append(got, typ.String())
	}
	assert.Equal(t, want, got)
}

func TestBeforeTiesBreakOnType(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	swipe := Event{Timestamp: at, Type: TypeCardSwipe}
	wifi := Event{Timestamp: at, Type: TypeWiFiLog}

	assert.True(t, swipe.Before(&wifi))
	assert.False(t, wifi.Before(&swipe))

	later := Event{Timestamp: at.Add(time.Second), Type: TypeCardSwipe}
	assert.True(t, wifi.Before(&later))
}

func TestHasLocation(t *testing.T) {
	located := Event{Location: "GATE_A"}
	bare := Event{}

	assert.True(t, located.HasLocation())
	assert.False(t, bare.HasLocation())
}
