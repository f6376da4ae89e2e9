package cmd

import (
	"fmt"
	"time"

	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/internal/view"
	"github.com/khrees2412/jobtracker/pkg/models"
	"github.com/spf13/cobra"
)

var appCmd = &cobra.Command{
	Use:     "app",
	Aliases: []string{"apps", "application"},
	Short:   "Manage tracked applications",
	Long:    "Add, list, edit and remove the job applications you are tracking",
}

var addAppCmd = &cobra.Command{
	Use:   "add",
	Short: "Track a new application",
	Example: `  jobtracker app add --company Stripe --role "Backend Engineer"
  jobtracker app add --company Acme --role SRE --location hybrid --status interview --date 2024-03-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}

		input := models.NewApplicationInput(time.Now())
		input.CompanyName, _ = cmd.Flags().GetString("company")
		input.Role, _ = cmd.Flags().GetString("role")
		input.ApplicationLink, _ = cmd.Flags().GetString("link")
		input.Notes, _ = cmd.Flags().GetString("notes")
		if cmd.Flags().Changed("location") {
			location, _ := cmd.Flags().GetString("location")
			input.LocationType = models.LocationType(location)
		}
		if cmd.Flags().Changed("status") {
			status, _ := cmd.Flags().GetString("status")
			input.Status = models.Status(status)
		}
		if cmd.Flags().Changed("date") {
			input.DateApplied, _ = cmd.Flags().GetString("date")
		}

		created, err := c.Add(cmd.Context(), input)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Tracking %s at %s (ID: %s)\n", created.Role, created.CompanyName, shortID(created.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "%d applications tracked\n", len(c.Records()))
		return nil
	},
}

var listAppCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked applications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		query, _ := cmd.Flags().GetString("query")
		if status != "" && status != view.StatusAll {
			if _, err := validation.ParseStatus(status); err != nil {
				return err
			}
		}

		records := c.Records()
		visible := view.Apply(records, view.Filter{Status: status, Query: query})

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No applications yet. Add one with 'jobtracker app add'")
			return nil
		}
		if len(visible) == 0 {
			fmt.Fprintln(out, "No applications match your filters.")
			return nil
		}

		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Applications (%d of %d)", len(visible), len(records))))
		for i, a := range visible {
			printApplicationLine(out, i, a)
		}
		return nil
	},
}

var showAppCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}
		a, err := c.Resolve(args[0])
		if err != nil {
			return err
		}
		printApplication(cmd.OutOrStdout(), a)
		return nil
	},
}

var editAppCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an application",
	Long:  "Change fields of an application. Only the flags you pass are updated; the ID may be a unique prefix.",
	Example: `  jobtracker app edit 3f2a --status interview
  jobtracker app edit 3f2a --notes "Recruiter call on Friday" --link https://jobs.example.com/42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}
		target, err := c.Resolve(args[0])
		if err != nil {
			return err
		}

		patch := patchFromFlags(cmd)
		updated, err := c.Change(cmd.Context(), target.ID, patch)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s at %s\n", updated.Role, updated.CompanyName)
		return nil
	},
}

var removeAppCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Stop tracking an application",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}
		target, err := c.Resolve(args[0])
		if err != nil {
			return err
		}

		if err := c.Remove(cmd.Context(), target.ID); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s at %s\n", target.Role, target.CompanyName)
		return nil
	},
}

// patchFromFlags builds a patch from the flags the user actually passed
func patchFromFlags(cmd *cobra.Command) models.ApplicationPatch {
	var patch models.ApplicationPatch
	flags := cmd.Flags()

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetString(name)
		return &value
	}

	patch.CompanyName = str("company")
	patch.Role = str("role")
	patch.ApplicationLink = str("link")
	patch.DateApplied = str("date")
	patch.Notes = str("notes")
	if location := str("location"); location != nil {
		l := models.LocationType(*location)
		patch.LocationType = &l
	}
	if status := str("status"); status != nil {
		s := models.Status(*status)
		patch.Status = &s
	}
	return patch
}

func addApplicationFlags(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("role", "", "Role or job title")
	cmd.Flags().String("location", string(models.LocationRemote), "Location type: remote, onsite or hybrid")
	cmd.Flags().String("link", "", "Link to the job posting")
	cmd.Flags().String("date", "", "Date applied (YYYY-MM-DD, default today)")
	cmd.Flags().String("status", string(models.StatusApplied), "Status: applied, interview, offer or rejected")
	cmd.Flags().String("notes", "", "Free-form notes")
}

func init() {
	rootCmd.AddCommand(appCmd)
	appCmd.AddCommand(addAppCmd)
	appCmd.AddCommand(listAppCmd)
	appCmd.AddCommand(showAppCmd)
	appCmd.AddCommand(editAppCmd)
	appCmd.AddCommand(removeAppCmd)

	addApplicationFlags(addAppCmd)
	addApplicationFlags(editAppCmd)

	listAppCmd.Flags().String("status", view.StatusAll, "Only show applications in this status")
	listAppCmd.Flags().StringP("query", "q", "", "Only show applications whose company or role contains this text")
}
