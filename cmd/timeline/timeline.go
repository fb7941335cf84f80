// timeline.go: assembles and reports the activity timeline for one entity
package timeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/campustrail/campustrail/internal/anomaly"
	"github.com/campustrail/campustrail/internal/conf"
	"github.com/campustrail/campustrail/internal/datastore"
	"github.com/campustrail/campustrail/internal/events"
	"github.com/campustrail/campustrail/internal/export"
	"github.com/campustrail/campustrail/internal/markov"
	"github.com/campustrail/campustrail/internal/pipeline"
	"github.com/campustrail/campustrail/internal/timeline"
)

const dateLayout = "2006-01-02"

// Command creates the timeline command.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		startDate  string
		endDate    string
		eventTypes []string
		format     string
		output     string
		fromStore  bool
	)

	cmd := &cobra.Command{
		Use:   "timeline [entity_id]",
		Short: "Assemble and report the activity timeline for one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(settings, startDate, endDate, eventTypes)
			if err != nil {
				return err
			}
			return runTimeline(settings, args[0], opts, format, output, fromStore)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Inclusive start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Inclusive end date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&eventTypes, "types", nil, "Event types to keep (comma-separated, default all)")
	cmd.Flags().StringVar(&format, "format", "", "Export format: csv or json (default: print a summary)")
	cmd.Flags().StringVar(&output, "output", "", "Export file path (default: stdout)")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "Read events from the sqlite store instead of the CSV snapshot")

	return cmd
}

// buildOptions converts the CLI filter flags into assembly options.
func buildOptions(settings *conf.Settings, startDate, endDate string, eventTypes []string) (timeline.Options, error) {
	opts := timeline.Options{
		InactivityDays: settings.Timeline.InactivityDays,
	}

	if startDate != "" {
		ts, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return opts, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		opts.Start = ts
	}
	if endDate != "" {
		ts, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return opts, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		opts.End = ts
	}
	for _, name := range eventTypes {
		t, ok := events.ParseType(strings.TrimSpace(name))
		if !ok {
			return opts, fmt.Errorf("unknown event type %q", name)
		}
		opts.Types = append(opts.Types, t)
	}

	return opts, nil
}

func runTimeline(settings *conf.Settings, entityID string, opts timeline.Options, format, output string, fromStore bool) error {
	var pool []events.Event

	if fromStore {
		store, err := datastore.Open(settings.Data.Store)
		if err != nil {
			return err
		}
		defer store.Close()
		// Range filtering happens again during assembly; fetching the
		// entity's whole history keeps the two paths equivalent.
		pool, err = store.GetEvents(entityID, time.Time{}, time.Time{})
		if err != nil {
			return err
		}
	} else {
		result, err := pipeline.BuildFromCSV(settings)
		if err != nil {
			return err
		}
		pool = result.Pool
	}

	tl := timeline.Assemble(entityID, pool, opts)

	switch format {
	case "csv":
		return export.WriteCSV(&tl, output)
	case "json":
		return export.WriteJSON(&tl, output)
	case "":
		printSummary(settings, &tl)
		return nil
	default:
		return fmt.Errorf("unsupported format %q, use csv or json", format)
	}
}

// printSummary renders the operator-facing report: the event table, the
// per-type counts, the inactivity flag, the predicted next location, and
// the detected anomalies.
func printSummary(settings *conf.Settings, tl *timeline.Timeline) {
	w := os.Stdout

	fmt.Fprintf(w, "Timeline for entity: %s\n", tl.EntityID)
	fmt.Fprintf(w, "%-4s %-20s %-17s %-14s %s\n", "#", "timestamp", "event_type", "location", "text")
	for i := range tl.Events {
		e := &tl.Events[i]
		fmt.Fprintf(w, "%-4d %-20s %-17s %-14s %s\n",
			i, e.Timestamp.Format("2006-01-02 15:04:05"), e.Type.String(), e.Location, e.Text)
	}

	fmt.Fprintf(w, "\nTotal events: %d\n", tl.Len())
	fmt.Fprintln(w, "Event counts:")
	for _, t := range events.AllTypes() {
		if count := tl.Counts[t]; count > 0 {
			fmt.Fprintf(w, "  - %-20s: %d\n", t.String(), count)
		}
	}

	fmt.Fprintf(w, "\nInactivity gaps (> %d days): %v\n", settings.Timeline.InactivityDays, tl.InactivityFlag)
	if last, ok := tl.LastLocation(); ok {
		fmt.Fprintf(w, "Last known location: %s\n", last)
	}
	if tl.Len() > 0 {
		fmt.Fprintf(w, "Last event timestamp: %s\n", tl.Events[tl.Len()-1].Timestamp.Format("2006-01-02 15:04:05"))
	}

	if next, ok := markov.PredictNext(tl); ok {
		fmt.Fprintf(w, "\nPredicted next location: %s\n", next)
	} else {
		fmt.Fprintf(w, "\nPredicted next location: N/A\n")
	}

	records := anomaly.Detect(tl, anomaly.Config{
		GapDays:             settings.Anomaly.GapDays,
		SpikeSigma:          settings.Anomaly.SpikeSigma,
		ExcludeLabLocations: settings.Anomaly.ExcludeLabLocations,
	})
	fmt.Fprintf(w, "\nDetected anomalies (%d):\n", len(records))
	for i, r := range records {
		fmt.Fprintf(w, "  %d. [%s/%s] %s\n", i+1, r.Kind, r.Severity, r.Detail)
	}
}
