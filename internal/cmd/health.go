package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	errwrap "github.com/scryinline/scryinline/internal/errors"
	"github.com/scryinline/scryinline/internal/inline"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/server/handlers"
)

var healthTimeout time.Duration

type healthProbe struct {
	name    string
	checker handlers.HealthChecker
}

type healthOutcome struct {
	name     string
	err      error
	duration time.Duration
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check configuration and upstream reachability",
	Long: `Validate the configuration and call each upstream the webhook depends on:
Scryfall search, and Telegram getMe when a bot token is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		handler, bot := inline.NewHandler(cfg, observability.CLILogger)

		probes := []healthProbe{}
		if checker, ok := handler.Searcher.(handlers.HealthChecker); ok {
			probes = append(probes, healthProbe{name: "scryfall", checker: checker})
		}
		if bot != nil {
			probes = append(probes, healthProbe{name: "telegram", checker: bot})
		} else {
			observability.CLILogger.Info("No Telegram token configured, skipping getMe")
		}

		outcomes := runHealthProbes(cmd.Context(), probes, healthTimeout)
		fmt.Fprintln(cmd.OutOrStdout(), renderHealth(outcomes))

		for _, outcome := range outcomes {
			if outcome.err != nil {
				observability.CLILogger.Debug("Health probe failed",
					zap.String("probe", outcome.name),
					zap.Error(outcome.err))
				return errwrap.WrapExternalService(cmd.Context(), outcome.err, outcome.name+" is unreachable")
			}
		}
		return nil
	},
}

func runHealthProbes(ctx context.Context, probes []healthProbe, timeout time.Duration) []healthOutcome {
	outcomes := make([]healthOutcome, 0, len(probes))
	for _, probe := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		started := time.Now()
		err := probe.checker.CheckHealth(probeCtx)
		cancel()
		outcomes = append(outcomes, healthOutcome{name: probe.name, err: err, duration: time.Since(started)})
	}
	return outcomes
}

func renderHealth(outcomes []healthOutcome) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Check", "Status", "Latency", "Detail"})

	t.AppendRow(table.Row{"config", "ok", "-", ""})
	for _, outcome := range outcomes {
		status, detail := "ok", ""
		if outcome.err != nil {
			status, detail = "FAIL", outcome.err.Error()
		}
		t.AppendRow(table.Row{outcome.name, status, outcome.duration.Round(time.Millisecond), detail})
	}

	return t.Render()
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "timeout per upstream check")
}
