// Package events defines the normalized event shape shared by all sources.
package events

import "time"

// Type identifies which observational source produced an event.
// The ordinal doubles as the tie-break priority when two events share a
// timestamp, so the declaration order here is load-bearing.
type Type int

const (
	TypeCardSwipe Type = iota
	TypeCCTVSighting
	TypeWiFiLog
	TypeLabBooking
	TypeTextNote
	TypeLibraryCheckout
)

var typeNames = map[Type]string{
	TypeCardSwipe:       "card_swipe",
	TypeCCTVSighting:    "cctv_sighting",
	TypeWiFiLog:         "wifi_log",
	TypeLabBooking:      "lab_booking",
	TypeTextNote:        "text_note",
	TypeLibraryCheckout: "library_checkout",
}

// String returns the wire label for the event type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseType converts a wire label back to a Type.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// AllTypes returns every event type in priority order.
func AllTypes() []Type {
	return []Type{
		TypeCardSwipe,
		TypeCCTVSighting,
		TypeWiFiLog,
		TypeLabBooking,
		TypeTextNote,
		TypeLibraryCheckout,
	}
}

// Event is a source record converted to the common timeline schema.
// Location is the source-specific "where" proxy: a physical location id for
// swipes, CCTV sightings and lab bookings, an access point id for WiFi, the
// note category for text notes, and the book id for library checkouts. An
// empty Location means the source row carried no usable value; downstream
// consumers skip such events when reasoning about places.
type Event struct {
	EntityID  string
	Timestamp time.Time
	Type      Type
	Location  string
	Text      string
}

// HasLocation reports whether the event carries a usable location value.
func (e *Event) HasLocation() bool {
	return e.Location != ""
}

// Before reports whether e sorts ahead of other: ascending timestamp,
// ties broken by source priority so assembly output is reproducible.
func (e *Event) Before(other *Event) bool {
	if !e.Timestamp.Equal(other.Timestamp) {
		return e.Timestamp.Before(other.Timestamp)
	}
	return e.Type < other.Type
}
