package cmd

import (
	"fmt"
	"strings"

	"github.com/khrees2412/jobtracker/internal/matcher"
	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/internal/view"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search your applications",
	Long:  "Find applications whose company name or role contains the query, ignoring case",
	Example: `  jobtracker search stripe
  jobtracker search "backend engineer" --status interview`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		status, _ := cmd.Flags().GetString("status")
		if status != "" && status != view.StatusAll {
			if _, err := validation.ParseStatus(status); err != nil {
				return err
			}
		}

		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}

		results := view.Apply(c.Records(), view.Filter{Status: status, Query: query})
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No applications matching '%s'.\n", query)
			return nil
		}

		m := matcher.New(query)
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Found %d applications", len(results))))
		for i, a := range results {
			printApplicationLine(out, i, a)
			fields := m.MatchedFields(&a)
			if len(fields) > 0 {
				fmt.Fprintf(out, "   %s %s\n", labelStyle.Render("Matched:"), mutedStyle.Render(strings.Join(fields, ", ")))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("status", "", "Only search applications in this status")
}
