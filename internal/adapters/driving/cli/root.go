// Package cli provides the knock command line interface.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driving"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services are the collaborators the commands use.
type Services struct {
	Ingestion driving.IngestionOrchestrator
	Records   driving.RecordService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler

	// Metrics serves /metrics in serve mode. Nil disables the endpoint.
	Metrics http.Handler

	// WatchConfig blocks until ctx is cancelled, calling onChange after
	// each edit of the config file. Nil disables reloading.
	WatchConfig func(ctx context.Context, onChange func()) error

	// Reload applies the current configuration to the running services.
	Reload func() error

	// Close releases resources such as the database.
	Close func() error
}

// Options are the global flags passed to the bootstrap function.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// Bootstrap builds the services for one command invocation.
type Bootstrap func(opts Options) (*Services, error)

// skipServices marks commands that run without services.
const skipServices = "knock/skip-services"

var (
	bootstrap    Bootstrap
	services     *Services
	ownsServices bool

	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "knock",
	Short: "Cultural event ingestion",
	Long: `knock collects movies and performances from the public film and
performing-arts catalogs and the ticketing venue feeds, reconciles them
into one canonical record per event and keeps them up to date.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.knock)")
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices sets prebuilt services. They are not closed by the commands.
func SetServices(s *Services) {
	services = s
	ownsServices = false
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	if cmd.Annotations[skipServices] == "true" || services != nil || bootstrap == nil {
		return nil
	}

	built, err := bootstrap(Options{ConfigDir: flagConfigDir, Verbose: flagVerbose})
	if err != nil {
		return err
	}
	services = built
	ownsServices = true
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if !ownsServices || services == nil {
		return nil
	}
	closeFn := services.Close
	services = nil
	ownsServices = false
	if closeFn != nil {
		return closeFn()
	}
	return nil
}

func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}

func ingestionService() (driving.IngestionOrchestrator, error) {
	if services == nil || services.Ingestion == nil {
		return nil, errNotConfigured("ingestion")
	}
	return services.Ingestion, nil
}

func recordsService() (driving.RecordService, error) {
	if services == nil || services.Records == nil {
		return nil, errNotConfigured("record")
	}
	return services.Records, nil
}

func settingsService() (driving.SettingsService, error) {
	if services == nil || services.Settings == nil {
		return nil, errNotConfigured("settings")
	}
	return services.Settings, nil
}
