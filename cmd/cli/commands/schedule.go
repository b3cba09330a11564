package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ScheduleCmd creates the schedule command
func ScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <month>",
		Short: "Show the final schedule, conflicts and member status for a month (YYYY-MM)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := app.Scheduler.GetMonthlySchedule(app.Ctx, args[0])
			if err != nil {
				return err
			}
			return printSchedule(app.Out, schedule)
		},
	}
}

// ResolveCmd creates the resolve command
func ResolveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <month>",
		Short: "Re-run conflict resolution for a month and rebuild its final schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conflicts, err := app.Scheduler.ResolveMonth(app.Ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "\n✓ %s resolved with %d conflict(s)\n", args[0], len(conflicts))
			printConflicts(app.Out, conflicts)
			fmt.Fprintln(app.Out)
			return nil
		},
	}
}

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <month>",
		Short: "Export a month as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")

			export, err := app.Scheduler.ExportSchedule(app.Ctx, args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}

			if outPath == "" {
				fmt.Fprintln(app.Out, string(data))
				return nil
			}

			if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			app.Logger.Info("Schedule exported", zap.String("month", args[0]), zap.String("path", outPath))
			fmt.Fprintf(app.Out, "\n✓ Exported %s to %s\n\n", args[0], outPath)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Write the export to this file instead of stdout")

	return cmd
}

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <month>",
		Short: "Publish a month to the rota spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.RotaSheetID == "" {
				return fmt.Errorf("rotaSheetID is not configured")
			}

			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			published, err := app.Scheduler.PublishSchedule(app.Ctx, sheets, app.Cfg.RotaSheetID, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "\n✓ Published %d weekend days to tab %q\n\n", len(published.Rows), "Weekend Duty "+published.Month)
			return nil
		},
	}
}
