package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campustrail/campustrail/internal/entity"
	"github.com/campustrail/campustrail/internal/events"
)

func openTestStore(t *testing.T) *DataStore {
	t.Helper()
	ds, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func testTable(t *testing.T) *entity.Table {
	t.Helper()
	table, err := entity.BuildTable([]entity.Profile{
		{EntityID: "E1", StudentID: "S100", CardID: "C1", FaceID: "F1", DeviceHash: "D1"},
		{EntityID: "E2", StaffID: "T200", CardID: "C2", FaceID: "F2", DeviceHash: "D2"},
	})
	require.NoError(t, err)
	return table
}

func ts(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func TestSaveAndGetEntities(t *testing.T) {
	ds := openTestStore(t)
	require.NoError(t, ds.SaveEntities(testTable(t)))

	got, err := ds.GetEntities()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "E1", got[0].ID)
	assert.Equal(t, "S100", got[0].PersonRef)
	assert.Equal(t, "T200", got[1].PersonRef)
}

func TestSaveEntitiesReplaces(t *testing.T) {
	ds := openTestStore(t)
	require.NoError(t, ds.SaveEntities(testTable(t)))

	table, err := entity.BuildTable([]entity.Profile{
		{EntityID: "E3", StudentID: "S300", CardID: "C3"},
	})
	require.NoError(t, err)
	require.NoError(t, ds.SaveEntities(table))

	got, err := ds.GetEntities()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "E3", got[0].ID)
}

func TestSaveAndGetEvents(t *testing.T) {
	ds := openTestStore(t)
	pool := []events.Event{
		{EntityID: "E1", Timestamp: ts(2, 9), Type: events.TypeWiFiLog, Location: "AP_1"},
		{EntityID: "E1", Timestamp: ts(1, 8), Type: events.TypeCardSwipe, Location: "GATE_A"},
		{EntityID: "E2", Timestamp: ts(1, 10), Type: events.TypeTextNote, Text: "helpdesk visit"},
	}
	require.NoError(t, ds.SaveEvents(pool))

	got, err := ds.GetEvents("E1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GATE_A", got[0].Location)
	assert.Equal(t, events.TypeWiFiLog, got[1].Type)
}

func TestGetEventsRangeBoundsInclusive(t *testing.T) {
	ds := openTestStore(t)
	pool := []events.Event{
		{EntityID: "E1", Timestamp: ts(1, 8), Type: events.TypeCardSwipe, Location: "A"},
		{EntityID: "E1", Timestamp: ts(2, 8), Type: events.TypeCardSwipe, Location: "B"},
		{EntityID: "E1", Timestamp: ts(3, 8), Type: events.TypeCardSwipe, Location: "C"},
	}
	require.NoError(t, ds.SaveEvents(pool))

	got, err := ds.GetEvents("E1", ts(1, 8), ts(2, 8))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Location)
	assert.Equal(t, "B", got[1].Location)
}

func TestGetEventsUnknownEntity(t *testing.T) {
	ds := openTestStore(t)
	require.NoError(t, ds.SaveEvents([]events.Event{
		{EntityID: "E1", Timestamp: ts(1, 8), Type: events.TypeCardSwipe},
	}))

	got, err := ds.GetEvents("E9", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveEventsEmptyPool(t *testing.T) {
	ds := openTestStore(t)
	require.NoError(t, ds.SaveEvents(nil))

	got, err := ds.GetEvents("E1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDailyCounts(t *testing.T) {
	ds := openTestStore(t)
	pool := []events.Event{
		{EntityID: "E1", Timestamp: ts(1, 8), Type: events.TypeCardSwipe},
		{EntityID: "E1", Timestamp: ts(1, 9), Type: events.TypeWiFiLog},
		{EntityID: "E1", Timestamp: ts(2, 8), Type: events.TypeCardSwipe},
		{EntityID: "E2", Timestamp: ts(1, 8), Type: events.TypeCardSwipe},
	}
	require.NoError(t, ds.SaveEvents(pool))

	counts, err := ds.DailyCounts("E1")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, DailyCount{Date: "2024-03-01", Count: 2}, counts[0])
	assert.Equal(t, DailyCount{Date: "2024-03-02", Count: 1}, counts[1])
}
