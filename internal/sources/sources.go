// Package sources converts the six raw observational datasets into
// normalized events keyed by canonical entity id.
//
// Each source carries its own schema and join key. Normalization resolves
// the key against the entity table, parses the timestamp, tags the fixed
// event type for the source, and maps the source's "where" column onto the
// shared location field. Rows whose key resolves to no entity are dropped
// as out-of-scope noise; rows with unparseable timestamps are dropped and
// counted so the loss is visible to operators.
package sources

import (
	"time"

	"github.com/campustrail/campustrail/internal/events"
)

// CardSwipe is one badge reader record, keyed by card id.
type CardSwipe struct {
	CardID     string
	LocationID string
	Timestamp  string
}

// CCTVSighting is one face detection record, keyed by face id.
// Face ids exported by the embedding pipeline carry a ".jpg" suffix that is
// stripped before resolution.
type CCTVSighting struct {
	FaceID     string
	LocationID string
	Timestamp  string
}

// WiFiLog is one access point association record, keyed by device hash.
type WiFiLog struct {
	DeviceHash string
	APID       string
	Timestamp  string
}

// LabBooking is one lab session record, keyed directly by entity id.
// StartTime is the canonical event instant; the booking creation time is
// administrative noise and is not carried into the timeline.
type LabBooking struct {
	EntityID  string
	RoomID    string
	StartTime string
	EndTime   string
}

// TextNote is one free-text observation record, keyed directly by entity id.
type TextNote struct {
	EntityID  string
	Category  string
	Text      string
	Timestamp string
}

// LibraryCheckout is one checkout record, keyed directly by entity id.
type LibraryCheckout struct {
	EntityID  string
	BookID    string
	Timestamp string
}

// Snapshot holds the six already-loaded source datasets for one pass.
type Snapshot struct {
	CardSwipes       []CardSwipe
	CCTVSightings    []CCTVSighting
	WiFiLogs         []WiFiLog
	LabBookings      []LabBooking
	TextNotes        []TextNote
	LibraryCheckouts []LibraryCheckout
}

// LinkReport accounts for every row of one source during normalization.
// Linked + Unresolved + Malformed == Total.
type LinkReport struct {
	Source     events.Type
	Total      int
	Linked     int
	Unresolved int // join key matched no entity; expected noise, not an error
	Malformed  int // timestamp could not be parsed; dropped and counted
}

// timestampLayouts are the accepted wire formats, all timezone-naive.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a timezone-naive timestamp string.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
