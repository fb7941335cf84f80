// linkstats.go: reports how well each source joins to the entity table
package linkstats

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campustrail/campustrail/internal/conf"
	"github.com/campustrail/campustrail/internal/pipeline"
	"github.com/campustrail/campustrail/internal/sources"
)

// Command creates the linkstats command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "linkstats",
		Short: "Report per-source entity link statistics",
		Long: "Normalizes every source against the entity table and reports, per " +
			"source, how many records linked to an entity, how many carried a key " +
			"no entity owns, and how many were dropped for unparseable timestamps.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.BuildFromCSV(settings)
			if err != nil {
				return err
			}
			printReports(result.Reports)
			return nil
		},
	}
}

func printReports(reports []sources.LinkReport) {
	w := os.Stdout
	for _, r := range reports {
		fmt.Fprintf(w, "\n%s link stats:\n", r.Source)
		fmt.Fprintf(w, "  Total records     : %d\n", r.Total)
		fmt.Fprintf(w, "  Linked to entity  : %d (%s)\n", r.Linked, percent(r.Linked, r.Total))
		fmt.Fprintf(w, "  Unresolved keys   : %d (%s)\n", r.Unresolved, percent(r.Unresolved, r.Total))
		fmt.Fprintf(w, "  Bad timestamps    : %d (%s)\n", r.Malformed, percent(r.Malformed, r.Total))
	}
}

func percent(part, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}
