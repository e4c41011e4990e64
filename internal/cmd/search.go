package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errwrap "github.com/scryinline/scryinline/internal/errors"
	"github.com/scryinline/scryinline/internal/inline"
	"github.com/scryinline/scryinline/internal/observability"
	"github.com/scryinline/scryinline/internal/output"
	"github.com/scryinline/scryinline/internal/telegram"
)

var (
	searchFormat string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run an inline query against Scryfall and print the results",
	Long: `Run a query through the same path the webhook uses and print the inline
results it would answer with. Arguments are joined with spaces and passed to
Scryfall unchanged, so the full search syntax works:

  scryinline search lightning bolt
  scryinline search 't:goblin c:r cmc<=2' --limit 10 --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(searchFormat)
		if err != nil {
			return errwrap.NewInvalidInputError(err.Error())
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if searchLimit > 0 {
			cfg.Inline.MaxResults = min(searchLimit, telegram.MaxInlineResults)
		}

		handler, _ := inline.NewHandler(cfg, observability.CLILogger)
		// Printing only; never answer a real inline query from the CLI.
		handler.Answerer = nil

		query := strings.Join(args, " ")
		results := handler.Answer(cmd.Context(), telegram.InlineQuery{ID: "cli", Query: query})

		rendered, err := output.NewFormatter(format).FormatResults(query, results)
		if err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "failed to render results")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "table", "output format: table, json, yaml, markdown")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, fmt.Sprintf("maximum results (default inline.max_results, at most %d)", telegram.MaxInlineResults))
}
