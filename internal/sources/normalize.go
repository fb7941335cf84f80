package sources

import (
	"log/slog"
	"strings"

	"github.com/campustrail/campustrail/internal/entity"
	"github.com/campustrail/campustrail/internal/events"
)

// Normalizer turns raw source records into normalized events using a
// previously built entity table. It holds no state beyond the table; every
// NormalizeX call is a pure pass over its input slice.
type Normalizer struct {
	table *entity.Table
}

// NewNormalizer creates a Normalizer bound to an entity table.
func NewNormalizer(table *entity.Table) *Normalizer {
	return &Normalizer{table: table}
}

// NormalizeAll normalizes every source in the snapshot and returns the
// combined event slices alongside one link report per source, in source
// priority order.
func (n *Normalizer) NormalizeAll(snap *Snapshot) ([]events.Event, []LinkReport) {
	var all []events.Event
	reports := make([]LinkReport, 0, 6)

	swipes, report := n.NormalizeCardSwipes(snap.CardSwipes)
	all = append(all, swipes...)
	reports = append(reports, report)

	sightings, report := n.NormalizeCCTVSightings(snap.CCTVSightings)
	all = append(all, sightings...)
	reports = append(reports, report)

	wifi, report := n.NormalizeWiFiLogs(snap.WiFiLogs)
	all = append(all, wifi...)
	reports = append(reports, report)

	labs, report := n.NormalizeLabBookings(snap.LabBookings)
	all = append(all, labs...)
	reports = append(reports, report)

	notes, report := n.NormalizeTextNotes(snap.TextNotes)
	all = append(all, notes...)
	reports = append(reports, report)

	checkouts, report := n.NormalizeLibraryCheckouts(snap.LibraryCheckouts)
	all = append(all, checkouts...)
	reports = append(reports, report)

	return all, reports
}

// NormalizeCardSwipes converts badge reader records into card_swipe events.
func (n *Normalizer) NormalizeCardSwipes(rows []CardSwipe) ([]events.Event, LinkReport) {
	report := LinkReport{Source: events.TypeCardSwipe, Total: len(rows)}
	out := make([]events.Event, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entityID, ok := n.table.Resolve(entity.KeyCard, row.CardID)
		if !ok {
			report.Unresolved++
			continue
		}
		ts, ok := ParseTimestamp(row.Timestamp)
		if !ok {
			report.Malformed++
			continue
		}
		report.Linked++
		out = append(out, events.Event{
			EntityID:  entityID,
			Timestamp: ts,
			Type:      events.TypeCardSwipe,
			Location:  row.LocationID,
		})
	}
	logReport(&report)
	return out, report
}

// NormalizeCCTVSightings converts face detections into cctv_sighting events.
func (n *Normalizer) NormalizeCCTVSightings(rows []CCTVSighting) ([]events.Event, LinkReport) {
	report := LinkReport{Source: events.TypeCCTVSighting, Total: len(rows)}
	out := make([]events.Event, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		faceID := strings.TrimSuffix(row.FaceID, ".jpg")
		entityID, ok := n.table.Resolve(entity.KeyFace, faceID)
		if !ok {
			report.Unresolved++
			continue
		}
		ts, ok := ParseTimestamp(row.Timestamp)
		if !ok {
			report.Malformed++
			continue
		}
		report.Linked++
		out = append(out, events.Event{
			EntityID:  entityID,
			Timestamp: ts,
			Type:      events.TypeCCTVSighting,
			Location:  row.LocationID,
		})
	}
	logReport(&report)
	return out, report
}

// NormalizeWiFiLogs converts access point associations into wifi_log events.
// The access point id stands in for location.
func (n *Normalizer) NormalizeWiFiLogs(rows []WiFiLog) ([]events.Event, LinkReport) {
	report := LinkReport{Source: events.TypeWiFiLog, Total: len(rows)}
	out := make([]events.Event, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entityID, ok := n.table.Resolve(entity.KeyDevice, row.DeviceHash)
		if !ok {
			report.Unresolved++
			continue
		}
		ts, ok := ParseTimestamp(row.Timestamp)
		if !ok {
			report.Malformed++
			continue
		}
		report.Linked++
		out = append(out, events.Event{
			EntityID:  entityID,
			Timestamp: ts,
			Type:      events.TypeWiFiLog,
			Location:  row.APID,
		})
	}
	logReport(&report)
	return out, report
}

// NormalizeLabBookings converts lab sessions into lab_booking events.
// The session start time is the canonical event timestamp.
func (n *Normalizer) NormalizeLabBookings(rows []LabBooking) ([]events.Event, LinkReport) {
	report := LinkReport{Source: events.TypeLabBooking, Total: len(rows)}
	out := make([]events.Event, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entityID, ok := n.table.Resolve(entity.KeyEntityID, row.EntityID)
		if !ok {
			report.Unresolved++
			continue
		}
		ts, ok := ParseTimestamp(row.StartTime)
		if !ok {
			report.Malformed++
			continue
		}
		report.Linked++
		out = append(out, events.Event{
			EntityID:  entityID,
			Timestamp: ts,
			Type:      events.TypeLabBooking,
			Location:  row.RoomID,
		})
	}
	logReport(&report)
	return out, report
}

// NormalizeTextNotes converts free-text observations into text_note events.
// The note category serves as the location proxy; the text rides along.
func (n *Normalizer) NormalizeTextNotes(rows []TextNote) ([]events.Event, LinkReport) {
	report := LinkReport{Source: events.TypeTextNote, Total: len(rows)}
	out := make([]events.Event, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entityID, ok := n.table.Resolve(entity.KeyEntityID, row.EntityID)
		if !ok {
			report.Unresolved++
			continue
		}
		ts, ok := ParseTimestamp(row.Timestamp)
		if !ok {
			report.Malformed++
			continue
		}
		report.Linked++
		out = append(out, events.Event{
			EntityID:  entityID,
			Timestamp: ts,
			Type:      events.TypeTextNote,
			Location:  row.Category,
			Text:      row.Text,
		})
	}
	logReport(&report)
	return out, report
}

// NormalizeLibraryCheckouts converts checkouts into library_checkout events.
// The book id serves as the location proxy.
func (n *Normalizer) NormalizeLibraryCheckouts(rows []LibraryCheckout) ([]events.Event, LinkReport) {
	report := LinkReport{Source: events.TypeLibraryCheckout, Total: len(rows)}
	out := make([]events.Event, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		entityID, ok := n.table.Resolve(entity.KeyEntityID, row.EntityID)
		if !ok {
			report.Unresolved++
			continue
		}
		ts, ok := ParseTimestamp(row.Timestamp)
		if !ok {
			report.Malformed++
			continue
		}
		report.Linked++
		out = append(out, events.Event{
			EntityID:  entityID,
			Timestamp: ts,
			Type:      events.TypeLibraryCheckout,
			Location:  row.BookID,
		})
	}
	logReport(&report)
	return out, report
}

func logReport(r *LinkReport) {
	if r.Malformed > 0 {
		slog.Warn("dropped rows with unparseable timestamps",
			"source", r.Source.String(),
			"malformed", r.Malformed,
			"total", r.Total)
	}
	slog.Debug("source normalized",
		"source", r.Source.String(),
		"total", r.Total,
		"linked", r.Linked,
		"unresolved", r.Unresolved,
		"malformed", r.Malformed)
}
