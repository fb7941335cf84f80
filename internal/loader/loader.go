// Package loader reads the campus snapshot from CSV files on disk.
//
// Loading is a collaborator concern, kept outside the core: the core
// packages receive already-loaded slices and never touch storage. Column
// access is by header name so the files may carry extra columns in any
// order.
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/campustrail/campustrail/internal/entity"
	"github.com/campustrail/campustrail/internal/errors"
	"github.com/campustrail/campustrail/internal/sources"
)

// File names expected inside the snapshot directory.
const (
	ProfilesFile         = "student-or-staff-profiles.csv"
	CardSwipesFile       = "campus_card_swipes.csv"
	CCTVFramesFile       = "cctv_frames.csv"
	WiFiLogsFile         = "wifi_associations_logs.csv"
	LabBookingsFile      = "lab_bookings.csv"
	TextNotesFile        = "free_text_notes.csv"
	LibraryCheckoutsFile = "library_checkouts.csv"
)

// Snapshot is the fully loaded input: the six sources plus the profiles.
type Snapshot struct {
	Profiles []entity.Profile
	Sources  sources.Snapshot
}

// LoadSnapshot reads all seven CSV files from dir.
func LoadSnapshot(dir string) (*Snapshot, error) {
	snap := &Snapshot{}

	profiles, err := LoadProfiles(filepath.Join(dir, ProfilesFile))
	if err != nil {
		return nil, err
	}
	snap.Profiles = profiles

	if snap.Sources.CardSwipes, err = LoadCardSwipes(filepath.Join(dir, CardSwipesFile)); err != nil {
		return nil, err
	}
	if snap.Sources.CCTVSightings, err = LoadCCTVSightings(filepath.Join(dir, CCTVFramesFile)); err != nil {
		return nil, err
	}
	if snap.Sources.WiFiLogs, err = LoadWiFiLogs(filepath.Join(dir, WiFiLogsFile)); err != nil {
		return nil, err
	}
	if snap.Sources.LabBookings, err = LoadLabBookings(filepath.Join(dir, LabBookingsFile)); err != nil {
		return nil, err
	}
	if snap.Sources.TextNotes, err = LoadTextNotes(filepath.Join(dir, TextNotesFile)); err != nil {
		return nil, err
	}
	if snap.Sources.LibraryCheckouts, err = LoadLibraryCheckouts(filepath.Join(dir, LibraryCheckoutsFile)); err != nil {
		return nil, err
	}

	return snap, nil
}

// LoadProfiles reads the profile table.
func LoadProfiles(path string) ([]entity.Profile, error) {
	rows, err := readCSV(path, "entity_id")
	if err != nil {
		return nil, err
	}
	out := make([]entity.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Profile{
			EntityID:   row.get("entity_id"),
			StudentID:  row.get("student_id"),
			StaffID:    row.get("staff_id"),
			CardID:     row.get("card_id"),
			FaceID:     row.get("face_id"),
			DeviceHash: row.get("device_hash"),
		})
	}
	return out, nil
}

// LoadCardSwipes reads the badge reader log.
func LoadCardSwipes(path string) ([]sources.CardSwipe, error) {
	rows, err := readCSV(path, "card_id", "location_id", "timestamp")
	if err != nil {
		return nil, err
	}
	out := make([]sources.CardSwipe, 0, len(rows))
	for _, row := range rows {
		out = append(out, sources.CardSwipe{
			CardID:     row.get("card_id"),
			LocationID: row.get("location_id"),
			Timestamp:  row.get("timestamp"),
		})
	}
	return out, nil
}

// LoadCCTVSightings reads the CCTV frame log.
func LoadCCTVSightings(path string) ([]sources.CCTVSighting, error) {
	rows, err := readCSV(path, "face_id", "location_id", "timestamp")
	if err != nil {
		return nil, err
	}
	out := make([]sources.CCTVSighting, 0, len(rows))
	for _, row := range rows {
		out = append(out, sources.CCTVSighting{
			FaceID:     row.get("face_id"),
			LocationID: row.get("location_id"),
			Timestamp:  row.get("timestamp"),
		})
	}
	return out, nil
}

// LoadWiFiLogs reads the WiFi association log.
func LoadWiFiLogs(path string) ([]sources.WiFiLog, error) {
	rows, err := readCSV(path, "device_hash", "ap_id", "timestamp")
	if err != nil {
		return nil, err
	}
	out := make([]sources.WiFiLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, sources.WiFiLog{
			DeviceHash: row.get("device_hash"),
			APID:       row.get("ap_id"),
			Timestamp:  row.get("timestamp"),
		})
	}
	return out, nil
}

// LoadLabBookings reads the lab booking table.
func LoadLabBookings(path string) ([]sources.LabBooking, error) {
	rows, err := readCSV(path, "entity_id", "room_id", "start_time")
	if err != nil {
		return nil, err
	}
	out := make([]sources.LabBooking, 0, len(rows))
	for _, row := range rows {
		out = append(out, sources.LabBooking{
			EntityID:  row.get("entity_id"),
			RoomID:    row.get("room_id"),
			StartTime: row.get("start_time"),
			EndTime:   row.get("end_time"),
		})
	}
	return out, nil
}

// LoadTextNotes reads the free-text note table.
func LoadTextNotes(path string) ([]sources.TextNote, error) {
	rows, err := readCSV(path, "entity_id", "category", "timestamp")
	if err != nil {
		return nil, err
	}
	out := make([]sources.TextNote, 0, len(rows))
	for _, row := range rows {
		out = append(out, sources.TextNote{
			EntityID:  row.get("entity_id"),
			Category:  row.get("category"),
			Text:      row.get("text"),
			Timestamp: row.get("timestamp"),
		})
	}
	return out, nil
}

// LoadLibraryCheckouts reads the library checkout table.
func LoadLibraryCheckouts(path string) ([]sources.LibraryCheckout, error) {
	rows, err := readCSV(path, "entity_id", "book_id", "timestamp")
	if err != nil {
		return nil, err
	}
	out := make([]sources.LibraryCheckout, 0, len(rows))
	for _, row := range rows {
		out = append(out, sources.LibraryCheckout{
			EntityID:  row.get("entity_id"),
			BookID:    row.get("book_id"),
			Timestamp: row.get("timestamp"),
		})
	}
	return out, nil
}

// record is one CSV row with header-keyed access.
type record struct {
	columns map[string]int
	fields  []string
}

func (r record) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

// readCSV opens a CSV file, verifies the required columns are present in
// the header, and returns the data rows.
func readCSV(path string, required ...string) ([]record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("loader").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // sources vary in column count

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New(err).
			Component("loader").
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, errors.Newf("required column %q missing from %s", col, filepath.Base(path)).
				Component("loader").
				Category(errors.CategorySchema).
				Context("path", path).
				Context("column", col).
				Build()
		}
	}

	var rows []record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(err).
				Component("loader").
				Category(errors.CategoryFileParsing).
				Context("path", path).
				Build()
		}
		rows = append(rows, record{columns: columns, fields: fields})
	}
	return rows, nil
}
