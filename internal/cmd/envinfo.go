package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scryinline/scryinline/internal/config"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display version, runtime and effective configuration. Secrets are redacted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderEnvInfo(cfg, viper.ConfigFileUsed()))
		return nil
	},
}

func renderEnvInfo(cfg *config.Config, configFile string) string {
	version := crucible.GetVersion()
	if configFile == "" {
		configFile = "(none)"
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Section", "Key", "Value"})

	t.AppendRows([]table.Row{
		{"app", "name", appName},
		{"app", "version", versionInfo.Version},
		{"app", "commit", versionInfo.Commit},
		{"app", "built", versionInfo.BuildDate},
		{"ssot", "gofulmen", version.Gofulmen},
		{"ssot", "crucible", version.Crucible},
		{"runtime", "go", runtime.Version()},
		{"runtime", "platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"config", "file", configFile},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"server", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
		{"server", "admin_token", redact(cfg.Server.AdminToken)},
		{"telegram", "token", redact(cfg.Telegram.Token)},
		{"telegram", "api_url", cfg.Telegram.APIURL},
		{"telegram", "webhook_secret", redact(cfg.Telegram.WebhookSecret)},
		{"telegram", "answer_via_api", cfg.Telegram.AnswerViaAPI},
		{"telegram", "cache_time", cfg.Telegram.CacheTime},
		{"scryfall", "api_url", cfg.Scryfall.APIURL},
		{"scryfall", "order", cfg.Scryfall.Order},
		{"scryfall", "timeout", cfg.Scryfall.Timeout},
		{"inline", "max_results", cfg.Inline.MaxResults},
		{"telemetry", "endpoint", cfg.Telemetry.Endpoint},
		{"telemetry", "api_key", redact(cfg.Telemetry.APIKey)},
		{"telemetry", "dataset", cfg.Telemetry.Dataset},
		{"logging", "level", cfg.Logging.Level},
		{"metrics", "port", cfg.Metrics.Port},
	})

	return t.Render()
}

func redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "(set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
