// resolve.go: resolves per-source identifiers to canonical entities
package resolve

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campustrail/campustrail/internal/conf"
	"github.com/campustrail/campustrail/internal/entity"
	"github.com/campustrail/campustrail/internal/pipeline"
)

// sampleLimit caps how many identifiers the report prints per namespace.
const sampleLimit = 5

// Command creates the resolve command.
func Command(settings *conf.Settings) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "resolve [identifier]",
		Short: "Resolve an identifier to its canonical entity",
		Long: "Resolves a card id, face id, device hash, student/staff id or entity id " +
			"to the entity that owns it. Without an identifier, prints a sample " +
			"resolution report for every identifier namespace.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.BuildFromCSV(settings)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				printReport(result.Table)
				return nil
			}
			return resolveOne(result.Table, kind, args[0])
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Identifier namespace: card_id, face_id, device_hash, person_ref or entity_id (default: try all)")

	return cmd
}

// resolveOne resolves a single identifier, trying every namespace when none
// was given.
func resolveOne(table *entity.Table, kind, value string) error {
	kinds := entity.AllKeyKinds()
	if kind != "" {
		kinds = []entity.KeyKind{entity.KeyKind(kind)}
	}

	for _, k := range kinds {
		if id, ok := table.Resolve(k, value); ok {
			e, _ := table.Get(id)
			fmt.Printf("%s: %s  -->  entity_id: %s (person_ref: %s)\n", k, value, id, e.PersonRef)
			return nil
		}
	}

	fmt.Printf("no entity owns identifier %q\n", value)
	return nil
}

// printReport mirrors the snapshot's identifier coverage: per namespace,
// the number of known values and the resolution of the first few.
func printReport(table *entity.Table) {
	w := os.Stdout
	fmt.Fprintln(w, "--- Resolved Entities ---")
	for _, kind := range []entity.KeyKind{entity.KeyCard, entity.KeyFace, entity.KeyDevice, entity.KeyPersonRef} {
		values := table.Keys(kind)
		if len(values) == 0 {
			fmt.Fprintf(w, "\nNo values found for identifier: %s\n", kind)
			continue
		}
		fmt.Fprintf(w, "\nIdentifier type: %s\n", kind)
		fmt.Fprintf(w, "Total unique ids: %d\n", len(values))
		limit := min(sampleLimit, len(values))
		for _, v := range values[:limit] {
			id, _ := table.Resolve(kind, v)
			fmt.Fprintf(w, "  %s: %s  -->  entity_id: %s\n", kind, v, id)
		}
	}
}
