// Package export serializes an assembled timeline to CSV or JSON for
// downstream consumers. Rendering is a collaborator concern; the core only
// guarantees a well-formed timeline value.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/campustrail/campustrail/internal/errors"
	"github.com/campustrail/campustrail/internal/timeline"
)

// timestampFormat is the timezone-naive wire format used on output.
const timestampFormat = "2006-01-02 15:04:05"

// timelineRow is the JSON shape of one timeline event.
type timelineRow struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Location  string `json:"location,omitempty"`
	Text      string `json:"text,omitempty"`
	GapDays   int    `json:"gap_days"`
}

// WriteCSV writes the timeline to the given destination in CSV format.
// An empty filename writes to stdout.
func WriteCSV(tl *timeline.Timeline, filename string) error {
	w, closeFn, err := openDestination(filename, ".csv")
	if err != nil {
		return err
	}
	defer closeFn()

	writer := csv.NewWriter(w)
	header := []string{"index", "timestamp", "event_type", "location", "text", "gap_days"}
	if err := writer.Write(header); err != nil {
		return exportError(err, filename)
	}
	for i := range tl.Events {
		e := &tl.Events[i]
		row := []string{
			strconv.Itoa(i),
			e.Timestamp.Format(timestampFormat),
			e.Type.String(),
			e.Location,
			e.Text,
			strconv.Itoa(tl.GapDays[i]),
		}
		if err := writer.Write(row); err != nil {
			return exportError(err, filename)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return exportError(err, filename)
	}
	return nil
}

// WriteJSON writes the timeline to the given destination as a JSON array.
// An empty filename writes to stdout.
func WriteJSON(tl *timeline.Timeline, filename string) error {
	w, closeFn, err := openDestination(filename, ".json")
	if err != nil {
		return err
	}
	defer closeFn()

	rows := make([]timelineRow, 0, len(tl.Events))
	for i := range tl.Events {
		e := &tl.Events[i]
		rows = append(rows, timelineRow{
			Index:     i,
			Timestamp: e.Timestamp.Format(timestampFormat),
			EventType: e.Type.String(),
			Location:  e.Location,
			Text:      e.Text,
			GapDays:   tl.GapDays[i],
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return exportError(err, filename)
	}
	return nil
}

// openDestination resolves the output writer. An empty filename means
// stdout; otherwise the extension is enforced and the file is created or
// truncated.
func openDestination(filename, ext string) (io.Writer, func(), error) {
	if filename == "" {
		return os.Stdout, func() {}, nil
	}
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, nil, exportError(err, filename)
	}
	return file, func() { _ = file.Close() }, nil
}

func exportError(err error, filename string) error {
	return errors.New(err).
		Component("export").
		Category(errors.CategoryFileIO).
		Context("path", filename).
		Build()
}

