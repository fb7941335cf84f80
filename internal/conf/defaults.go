// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "CampusTrail")
	viper.SetDefault("main.log.level", "info")

	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.store", "campustrail.db")

	viper.SetDefault("timeline.inactivitydays", 7)

	viper.SetDefault("anomaly.gapdays", 14)
	viper.SetDefault("anomaly.spikesigma", 2.0)
	viper.SetDefault("anomaly.excludelablocations", true)
}
