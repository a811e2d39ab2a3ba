package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/waterline/internal/history"
)

type historyOptions struct {
	installationID string
	view           string
	date           string
}

func newHistoryCommand(root *rootOptions) *cobra.Command {
	options := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the intake chart of one installation as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, options)
		},
	}
	cmd.Flags().StringVar(&options.installationID, "installation", "", "Installation id")
	cmd.Flags().StringVar(&options.view, "view", string(history.GranularityWeek), "Granularity: day, week or month")
	cmd.Flags().StringVar(&options.date, "date", "", "Reference local date (YYYY-MM-DD), defaults to today")
	return cmd
}

func runHistory(cmd *cobra.Command, root *rootOptions, options *historyOptions) error {
	granularity, ok := history.ParseGranularity(options.view)
	if !ok {
		return fmt.Errorf("unsupported view %q", options.view)
	}

	ctx := cmd.Context()
	env, err := loadEnvironment(ctx, root)
	if err != nil {
		return err
	}
	defer env.close()

	reference := time.Now().In(env.location)
	if raw := strings.TrimSpace(options.date); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, env.location)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", raw, err)
		}
		reference = parsed.Add(12 * time.Hour)
	}

	registry := env.registry()
	defer registry.Close()
	manager, err := env.installationManager(ctx, registry, options.installationID)
	if err != nil {
		return err
	}

	series := history.BuildSeries(manager.History(), granularity, reference, env.location)
	return printSeries(cmd, series)
}

func printSeries(cmd *cobra.Command, series history.Series) error {
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	writeLine(writer, "%s\t%s", strings.ToUpper(string(series.Granularity)), series.Reference)
	for _, bucket := range series.Buckets {
		writeLine(writer, "%s\t%d ml", bucket.Label, bucket.Intake)
	}
	writeLine(writer, "Total\t%d ml", series.Total)
	if series.Best != nil {
		writeLine(writer, "Best\t%s", series.Best.Label)
	}
	return writer.Flush()
}
