package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the configuration file.

API keys and the Discord webhook can also come from the environment
(KOFIC_API_KEY, KOPIS_API_KEY, DISCORD_WEBHOOK_URL) or a .env file in the
working directory; those values win over the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration key",
	Long: `Sets one key in the configuration file, for example:

  knock config set sources.kofic.api_key <key>
  knock config set sources.cgv.location https://feeds.example/cgv.json
  knock config set crawl.max_pages 500
  knock config set identity.policy best
  knock config set scheduler.ingestion.interval 6h`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	cfg, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printHeading(cmd, "Configuration")
	cmd.Printf("  File: %s\n", svc.Path())
	cmd.Printf("  Data dir: %s\n", valueOr(cfg.DataDir, "(default)"))
	cmd.Println()

	cmd.Println("[Crawl]")
	cmd.Printf("  Max pages: %d\n", cfg.Crawl.MaxPages)
	cmd.Printf("  Detail workers: %d\n", cfg.Crawl.DetailWorkers)
	cmd.Printf("  Identity policy: %s\n", cfg.Identity)
	cmd.Printf("  Rate limit: %.1f req/s (burst %d)\n", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	cmd.Println()

	rows := [][]string{
		{domain.SourceKOFIC, enabledLabel(cfg.KOFIC.Enabled), cfg.KOFIC.ListURL, maskAPIKey(cfg.KOFIC.APIKey)},
		{domain.SourceKOPIS, enabledLabel(cfg.KOPIS.Enabled), cfg.KOPIS.URL, maskAPIKey(cfg.KOPIS.APIKey)},
	}
	for _, id := range domain.SourceOrder {
		feed, ok := cfg.Feeds[id]
		if !ok {
			continue
		}
		rows = append(rows, []string{id, enabledLabel(feed.Enabled), feed.Location, ""})
	}
	cmd.Println("[Sources]")
	cmd.Println(renderTable([]string{"Source", "Enabled", "Location", "API key"}, rows, nil))
	cmd.Println()

	cmd.Println("[Notify]")
	cmd.Printf("  Discord webhook: %s\n", maskAPIKey(cfg.Notify.DiscordWebhook))
	cmd.Println()

	cmd.Println("[Scheduler]")
	task := cfg.Scheduler.Task(domain.TaskIDIngestion)
	cmd.Printf("  Enabled: %s\n", enabledLabel(cfg.Scheduler.Enabled && task.Enabled))
	cmd.Printf("  Interval: %s\n", task.Interval)
	cmd.Printf("  Metrics: %s\n", valueOr(cfg.MetricsAddr, "off"))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	key := args[0]
	if err := svc.Set(key, args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s updated.\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	cmd.Println(svc.Path())
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func enabledLabel(on bool) string {
	if on {
		return "yes"
	}
	return "no"
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
