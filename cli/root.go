package cli

import (
	"os"

	"github.com/NethermindEth/geoipupdate/internal/config"
	"github.com/NethermindEth/geoipupdate/internal/locker"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// RootCmd builds the geoipupdate command. Without sub-command it runs one
// update of every configured edition.
func RootCmd(fs afero.Fs, l locker.Locker, version string) *cobra.Command {
	var (
		configFile        string
		databaseDirectory string
		metricsFile       string
		verbose           bool
		output            bool
		showVersion       bool
		settings          *config.Settings
	)
	cmd := cobra.Command{
		Use:   "geoipupdate",
		Short: "Update GeoIP databases",
		Long: `Checks every edition listed in the config file against the update server and
installs newer copies into the database directory. A database is only ever
replaced by a verified copy, so readers never see a partial file.

The config file is read from --config-file, then from the GEOIPUPDATE_CONF_FILE
environment variable, then from the default location. Files ending in .yml or
.yaml are read as YAML. GEOIPUPDATE_ACCOUNT_ID, GEOIPUPDATE_LICENSE_KEY,
GEOIPUPDATE_EDITION_IDS and GEOIPUPDATE_HOST override the file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			var err error
			settings, err = config.Load(fs, configFile,
				config.WithEnvironment(os.LookupEnv),
				config.WithDatabaseDirectory(databaseDirectory),
				config.WithVerbose(verbose),
				config.WithOutput(output),
				config.WithMetricsFile(metricsFile),
			)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(cmd.OutOrStdout(), version)
				return nil
			}
			return runUpdate(cmd.Context(), cmd.OutOrStdout(), fs, l, settings, version)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config-file", "f", defaultConfigFile(), "configuration file")
	cmd.Flags().StringVarP(&databaseDirectory, "database-directory", "d", "", "store databases in this directory, overriding the config file")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in the Prometheus text format to this file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "use verbose output")
	cmd.Flags().BoolVarP(&output, "output", "o", false, "print a JSON summary of the run to stdout")
	cmd.Flags().BoolVarP(&showVersion, "version", "V", false, "print the version and exit")

	cmd.AddCommand(VersionCmd(version))
	cmd.CompletionOptions.DisableDefaultCmd = true
	return &cmd
}

func defaultConfigFile() string {
	if v, ok := os.LookupEnv(config.EnvConfigFile); ok && v != "" {
		return v
	}
	return config.DefaultConfigFile
}
