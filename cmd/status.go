package cmd

import (
	"fmt"

	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/internal/view"
	"github.com/khrees2412/jobtracker/pkg/models"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View application status",
	Long:  "View your applications grouped by status, and move them between stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}

		filterStatus, _ := cmd.Flags().GetString("filter")
		statuses := models.Statuses
		if filterStatus != "" && filterStatus != view.StatusAll {
			status, err := validation.ParseStatus(filterStatus)
			if err != nil {
				return err
			}
			statuses = []models.Status{status}
		}

		out := cmd.OutOrStdout()
		records := c.Records()
		if len(records) == 0 {
			fmt.Fprintln(out, "No applications yet. Add one with 'jobtracker app add'")
			return nil
		}

		groups := view.GroupByStatus(records)
		fmt.Fprintln(out, titleStyle.Render("Application Status"))
		shown := 0
		for _, status := range statuses {
			group := groups[status]
			if len(group) == 0 {
				continue
			}
			fmt.Fprintf(out, "\n%s (%d)\n", labelStyle.Render(statusLabel(status)), len(group))
			for _, a := range group {
				fmt.Fprintf(out, "  %s  %s at %s %s\n",
					mutedStyle.Render(shortID(a.ID)), a.Role, a.CompanyName,
					mutedStyle.Render("("+a.DateApplied+")"))
			}
			shown += len(group)
		}
		if shown == 0 {
			fmt.Fprintf(out, "No applications with status %s.\n", filterStatus)
		}
		return nil
	},
}

var updateStatusCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Move an application to another status",
	Example: `  jobtracker status update 3f2a --status interview
  jobtracker status update 3f2a --status rejected --notes "Position filled"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("status")
		status, err := validation.ParseStatus(raw)
		if err != nil {
			return err
		}

		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}
		target, err := c.Resolve(args[0])
		if err != nil {
			return err
		}

		patch := models.ApplicationPatch{Status: &status}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			patch.Notes = &notes
		}

		updated, err := c.Change(cmd.Context(), target.ID, patch)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s at %s: %s → %s\n",
			updated.Role, updated.CompanyName, statusLabel(target.Status), statusLabel(updated.Status))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(updateStatusCmd)

	statusCmd.Flags().String("filter", "", "Only show this status (applied, interview, offer, rejected)")

	updateStatusCmd.Flags().String("status", "", "New status (applied, interview, offer, rejected)")
	updateStatusCmd.Flags().String("notes", "", "Replace the application notes")
	_ = updateStatusCmd.MarkFlagRequired("status")
}
