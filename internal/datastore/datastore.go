// Package datastore persists the resolved snapshot (entities and
// normalized events) in sqlite so repeated timeline queries do not re-run
// CSV loading and normalization. Persistence is a collaborator concern;
// the core packages never touch the store.
package datastore

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campustrail/campustrail/internal/entity"
	"github.com/campustrail/campustrail/internal/events"
)

// EntityRecord is the persisted canonical entity row.
type EntityRecord struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement"`
	EntityID   string `gorm:"uniqueIndex"`
	PersonRef  string
	CardID     string
	FaceID     string
	DeviceHash string
}

// EventRecord is the persisted normalized event.
type EventRecord struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	EntityID  string    `gorm:"index:idx_entity_time,priority:1"`
	Timestamp time.Time `gorm:"index:idx_entity_time,priority:2"`
	EventType string
	Location  string
	Text      string
}

// DailyCount is one row of the per-day aggregation for an entity.
type DailyCount struct {
	Date  string
	Count int
}

// DataStore wraps the gorm handle.
type DataStore struct {
	DB *gorm.DB
}

// Open opens (or creates) the sqlite store at path and migrates the schema.
func Open(path string) (*DataStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, dbError(err, "open", "path", path)
	}
	if err := db.AutoMigrate(&EntityRecord{}, &EventRecord{}); err != nil {
		return nil, dbError(err, "migrate", "path", path)
	}
	return &DataStore{DB: db}, nil
}

// Close releases the underlying connection.
func (ds *DataStore) Close() error {
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	return sqlDB.Close()
}

// SaveEntities replaces the stored entity table with the given one.
func (ds *DataStore) SaveEntities(table *entity.Table) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&EntityRecord{}).Error; err != nil {
			return dbError(err, "clear entities")
		}
		for _, e := range table.Entities() {
			rec := EntityRecord{
				EntityID:   e.ID,
				PersonRef:  e.PersonRef,
				CardID:     e.CardID,
				FaceID:     e.FaceID,
				DeviceHash: e.DeviceHash,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return dbError(err, "save entity", "entity_id", e.ID)
			}
		}
		return nil
	})
}

// SaveEvents replaces the stored events with the given normalized pool.
func (ds *DataStore) SaveEvents(pool []events.Event) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&EventRecord{}).Error; err != nil {
			return dbError(err, "clear events")
		}
		records := make([]EventRecord, 0, len(pool))
		for i := range pool {
			e := &pool[i]
			records = append(records, EventRecord{
				EntityID:  e.EntityID,
				Timestamp: e.Timestamp,
				EventType: e.Type.String(),
				Location:  e.Location,
				Text:      e.Text,
			})
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 500).Error; err != nil {
			return dbError(err, "save events", "count", len(records))
		}
		return nil
	})
}

// GetEvents returns the stored events for one entity, oldest first.
// Zero-valued bounds mean unbounded; both bounds are inclusive.
func (ds *DataStore) GetEvents(entityID string, start, end time.Time) ([]events.Event, error) {
	query := ds.DB.Where("entity_id = ?", entityID)
	if !start.IsZero() {
		query = query.Where("timestamp >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("timestamp <= ?", end)
	}

	var records []EventRecord
	if err := query.Order("timestamp ASC, id ASC").Find(&records).Error; err != nil {
		return nil, dbError(err, "get events", "entity_id", entityID)
	}

	out := make([]events.Event, 0, len(records))
	for i := range records {
		rec := &records[i]
		eventType, ok := events.ParseType(rec.EventType)
		if !ok {
			// Unknown labels can only come from a newer writer; skip them.
			continue
		}
		out = append(out, events.Event{
			EntityID:  rec.EntityID,
			Timestamp: rec.Timestamp,
			Type:      eventType,
			Location:  rec.Location,
			Text:      rec.Text,
		})
	}
	return out, nil
}

// GetEntities returns the stored entity table rows in insert order.
func (ds *DataStore) GetEntities() ([]entity.Entity, error) {
	var records []EntityRecord
	if err := ds.DB.Order("id ASC").Find(&records).Error; err != nil {
		return nil, dbError(err, "get entities")
	}
	out := make([]entity.Entity, 0, len(records))
	for i := range records {
		rec := &records[i]
		out = append(out, entity.Entity{
			ID:         rec.EntityID,
			PersonRef:  rec.PersonRef,
			CardID:     rec.CardID,
			FaceID:     rec.FaceID,
			DeviceHash: rec.DeviceHash,
		})
	}
	return out, nil
}

// DailyCounts aggregates stored events per calendar date for one entity.
func (ds *DataStore) DailyCounts(entityID string) ([]DailyCount, error) {
	var counts []DailyCount
	err := ds.DB.Model(&EventRecord{}).
		Select("strftime('%Y-%m-%d', timestamp) AS date, COUNT(*) AS count").
		Where("entity_id = ?", entityID).
		Group("date").
		Order("date ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, dbError(err, "daily counts", "entity_id", entityID)
	}
	return counts, nil
}
