package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/waterline/internal/services"
)

type exportOptions struct {
	installationID string
	format         string
	kind           string
	from           string
	to             string
}

func newExportCommand(root *rootOptions) *cobra.Command {
	options := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the intake history of one installation to stdout",
		Example: `  waterline export --installation 6f1c... --format csv
  waterline export --installation 6f1c... --from 2026-10-01 --to 2026-10-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, options)
		},
	}
	cmd.Flags().StringVar(&options.installationID, "installation", "", "Installation id")
	cmd.Flags().StringVar(&options.format, "format", "json", "Output format: json or csv")
	cmd.Flags().StringVar(&options.kind, "kind", "entries", "CSV layout: entries or daily")
	cmd.Flags().StringVar(&options.from, "from", "", "First local date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&options.to, "to", "", "Last local date to include (YYYY-MM-DD)")
	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, options *exportOptions) error {
	format := strings.ToLower(strings.TrimSpace(options.format))
	if format != "json" && format != "csv" {
		return fmt.Errorf("unsupported format %q", options.format)
	}

	ctx := cmd.Context()
	env, err := loadEnvironment(ctx, root)
	if err != nil {
		return err
	}
	defer env.close()

	registry := env.registry()
	defer registry.Close()
	manager, err := env.installationManager(ctx, registry, options.installationID)
	if err != nil {
		return err
	}

	from, to, err := services.ParseExportRange(options.from, options.to, env.location)
	if err != nil {
		return err
	}
	exports := services.NewExportService(env.location)
	records := exports.FilterRange(manager.History(), from, to)
	goal := manager.Settings().DailyGoal
	out := cmd.OutOrStdout()

	if format == "csv" {
		switch options.kind {
		case "entries":
			return exports.WriteCSV(out, records)
		case "daily":
			return exports.WriteDailyCSV(out, records, goal)
		default:
			return fmt.Errorf("unsupported csv kind %q", options.kind)
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exports.BuildDocument(records, goal, time.Now()))
}
