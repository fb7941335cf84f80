package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campustrail/campustrail/cmd/db"
	"github.com/campustrail/campustrail/cmd/linkstats"
	"github.com/campustrail/campustrail/cmd/resolve"
	"github.com/campustrail/campustrail/cmd/timeline"
	"github.com/campustrail/campustrail/internal/conf"
	"github.com/campustrail/campustrail/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "campustrail",
		Short: "CampusTrail CLI",
		Long:  "Correlates campus activity records across sources into per-entity timelines.",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		timeline.Command(settings),
		resolve.Command(settings),
		linkstats.Command(settings),
		db.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := logging.ParseLevel(settings.Main.Log.Level)
		if settings.Debug {
			level = logging.ParseLevel("debug")
		}
		logging.Init(level)
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Data.Dir, "datadir", viper.GetString("data.dir"), "Directory holding the source CSV files")
	rootCmd.PersistentFlags().StringVar(&settings.Data.Store, "store", viper.GetString("data.store"), "Path to the sqlite snapshot store")
	rootCmd.PersistentFlags().StringVar(&settings.Main.Log.Level, "loglevel", viper.GetString("main.log.level"), "Log level: debug, info, warn or error")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
