// Package pipeline wires the collaborators together: load the snapshot,
// build the entity table, and normalize every source into one event pool.
// The CLI commands share this path so they agree on how a snapshot is
// resolved.
package pipeline

import (
	"github.com/campustrail/campustrail/internal/conf"
	"github.com/campustrail/campustrail/internal/entity"
	"github.com/campustrail/campustrail/internal/events"
	"github.com/campustrail/campustrail/internal/loader"
	"github.com/campustrail/campustrail/internal/sources"
)

// Result is a fully resolved snapshot ready for assembly.
type Result struct {
	Table   *entity.Table
	Pool    []events.Event
	Reports []sources.LinkReport
}

// BuildFromCSV loads the CSV snapshot from the configured data directory,
// builds the canonical entity table, and normalizes all six sources.
func BuildFromCSV(settings *conf.Settings) (*Result, error) {
	snap, err := loader.LoadSnapshot(settings.Data.Dir)
	if err != nil {
		return nil, err
	}
	return Build(snap)
}

// Build resolves an already-loaded snapshot.
func Build(snap *loader.Snapshot) (*Result, error) {
	table, err := entity.BuildTable(snap.Profiles)
	if err != nil {
		return nil, err
	}

	normalizer := sources.NewNormalizer(table)
	pool, reports := normalizer.NormalizeAll(&snap.Sources)

	return &Result{Table: table, Pool: pool, Reports: reports}, nil
}
