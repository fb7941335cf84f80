// Package entity builds the canonical entity table and resolves per-source
// identifiers back to the entity that owns them.
package entity

import (
	"log/slog"

	"github.com/campustrail/campustrail/internal/errors"
)

// KeyKind names the identifier namespaces an entity can own.
type KeyKind string

const (
	KeyCard      KeyKind = "card_id"
	KeyFace      KeyKind = "face_id"
	KeyDevice    KeyKind = "device_hash"
	KeyPersonRef KeyKind = "person_ref"
	KeyEntityID  KeyKind = "entity_id"
)

// AllKeyKinds returns the identifier namespaces in a fixed order.
func AllKeyKinds() []KeyKind {
	return []KeyKind{KeyCard, KeyFace, KeyDevice, KeyPersonRef, KeyEntityID}
}

// Profile is one row of the profile table as loaded from storage.
// Empty strings mean the identifier is absent for this person.
type Profile struct {
	EntityID   string
	StudentID  string
	StaffID    string
	CardID     string
	FaceID     string
	DeviceHash string
}

// Entity is one row of the canonical entity table. PersonRef collapses the
// student/staff distinction: student id when present, staff id otherwise.
type Entity struct {
	ID         string
	PersonRef  string
	CardID     string
	FaceID     string
	DeviceHash string
}

// Table is the canonical entity table with exact-match lookup indexes for
// every identifier namespace. Build once per snapshot; never mutated after.
type Table struct {
	entities []Entity
	byKey    map[KeyKind]map[string]string // kind -> key value -> entity id
}

// BuildTable creates the canonical entity table from profile rows.
// Every person must be either a student or a staff member; a row with
// neither identifier is a data integrity failure and aborts the build.
func BuildTable(profiles []Profile) (*Table, error) {
	t := &Table{
		entities: make([]Entity, 0, len(profiles)),
		byKey:    make(map[KeyKind]map[string]string),
	}
	for _, kind := range AllKeyKinds() {
		t.byKey[kind] = make(map[string]string)
	}

	for i := range profiles {
		p := &profiles[i]
		personRef := p.StudentID
		if personRef == "" {
			personRef = p.StaffID
		}
		if personRef == "" {
			return nil, errors.Newf("profile row %d (entity %q) has neither student_id nor staff_id", i, p.EntityID).
				Component("entity").
				Category(errors.CategorySchema).
				Priority(errors.PriorityHigh).
				Context("row", i).
				Build()
		}

		e := Entity{
			ID:         p.EntityID,
			PersonRef:  personRef,
			CardID:     p.CardID,
			FaceID:     p.FaceID,
			DeviceHash: p.DeviceHash,
		}
		t.entities = append(t.entities, e)

		t.index(KeyEntityID, e.ID, e.ID)
		t.index(KeyPersonRef, e.PersonRef, e.ID)
		t.index(KeyCard, e.CardID, e.ID)
		t.index(KeyFace, e.FaceID, e.ID)
		t.index(KeyDevice, e.DeviceHash, e.ID)
	}

	return t, nil
}

// index records key ownership. Under the data invariant every non-empty key
// maps to exactly one entity; a duplicate is tolerated by keeping the first
// owner in row order and logging the collision.
func (t *Table) index(kind KeyKind, key, entityID string) {
	if key == "" {
		return
	}
	if existing, ok := t.byKey[kind][key]; ok {
		slog.Warn("duplicate identifier ownership, keeping first owner",
			"kind", string(kind),
			"key", key,
			"kept", existing,
			"ignored", entityID)
		return
	}
	t.byKey[kind][key] = entityID
}

// Resolve returns the entity id owning the given identifier value, or
// ok=false when no entity owns it. Lookup is exact equality.
func (t *Table) Resolve(kind KeyKind, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	id, ok := t.byKey[kind][value]
	return id, ok
}

// Get returns the entity row for an entity id.
func (t *Table) Get(entityID string) (Entity, bool) {
	for i := range t.entities {
		if t.entities[i].ID == entityID {
			return t.entities[i], true
		}
	}
	return Entity{}, false
}

// Entities returns the table rows in stable build order.
func (t *Table) Entities() []Entity {
	return t.entities
}

// Len returns the number of entities in the table.
func (t *Table) Len() int {
	return len(t.entities)
}

// Keys returns every known identifier value for a namespace, in row order.
func (t *Table) Keys(kind KeyKind) []string {
	keys := make([]string, 0, len(t.byKey[kind]))
	seen := make(map[string]bool, len(t.byKey[kind]))
	for i := range t.entities {
		e := &t.entities[i]
		var v string
		switch kind {
		case KeyCard:
			v = e.CardID
		case KeyFace:
			v = e.FaceID
		case KeyDevice:
			v = e.DeviceHash
		case KeyPersonRef:
			v = e.PersonRef
		case KeyEntityID:
			v = e.ID
		}
		if v != "" && !seen[v] {
			seen[v] = true
			keys = append(keys, v)
		}
	}
	return keys
}
