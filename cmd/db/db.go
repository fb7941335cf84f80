// db.go: commands for the sqlite snapshot store
package db

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campustrail/campustrail/internal/conf"
	"github.com/campustrail/campustrail/internal/datastore"
	"github.com/campustrail/campustrail/internal/pipeline"
)

// Command creates the db parent command.
func Command(settings *conf.Settings) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Commands for the sqlite snapshot store",
	}

	dbCmd.AddCommand(importCommand(settings))
	dbCmd.AddCommand(entitiesCommand(settings))

	return dbCmd
}

// importCommand loads the CSV snapshot, resolves it, and persists the
// entity table and normalized events.
func importCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the CSV snapshot into the sqlite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.BuildFromCSV(settings)
			if err != nil {
				return err
			}

			store, err := datastore.Open(settings.Data.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveEntities(result.Table); err != nil {
				return err
			}
			if err := store.SaveEvents(result.Pool); err != nil {
				return err
			}

			fmt.Printf("imported %d entities and %d events into %s\n",
				result.Table.Len(), len(result.Pool), settings.Data.Store)
			return nil
		},
	}
}

// entitiesCommand lists the stored entity table.
func entitiesCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List entities in the sqlite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := datastore.Open(settings.Data.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			entities, err := store.GetEntities()
			if err != nil {
				return err
			}

			fmt.Printf("%-12s %-12s %-10s %-12s %s\n", "entity_id", "person_ref", "card_id", "face_id", "device_hash")
			for i := range entities {
				e := &entities[i]
				fmt.Printf("%-12s %-12s %-10s %-12s %s\n", e.ID, e.PersonRef, e.CardID, e.FaceID, e.DeviceHash)
			}
			return nil
		},
	}
}
