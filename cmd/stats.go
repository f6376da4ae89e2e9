package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/khrees2412/jobtracker/internal/view"
	"github.com/khrees2412/jobtracker/pkg/models"
	"github.com/spf13/cobra"
)

// recentWindow bounds the recent activity section
const recentWindow = 30 * 24 * time.Hour

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View application statistics and insights",
	Long:  "Display counts per status, response rates and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, err := loadCache(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		records := c.Records()
		if len(records) == 0 {
			fmt.Fprintln(out, "No applications yet. Add one with 'jobtracker app add'")
			return nil
		}

		stats := view.Statistics(records)
		fmt.Fprintln(out, titleStyle.Render("Application Statistics"))

		fmt.Fprintf(out, "\n%s\n", labelStyle.Render("Overview"))
		fmt.Fprintf(out, "  Total Applications: %d\n", stats.Total)
		fmt.Fprintf(out, "  Applied: %d\n", stats.Applied)
		fmt.Fprintf(out, "  Interviews: %d\n", stats.Interviews)
		fmt.Fprintf(out, "  Offers: %d\n", stats.Offers)
		fmt.Fprintf(out, "  Rejected: %d\n", stats.Rejected)

		fmt.Fprintf(out, "\n%s\n", labelStyle.Render("Response Rate"))
		fmt.Fprintf(out, "  Response Rate: %.1f%%\n", stats.ResponseRate())
		if stats.Interviews > 0 {
			fmt.Fprintf(out, "  Interview Rate: %.1f%%\n", percentage(stats.Interviews, stats.Total))
		}
		if stats.Offers > 0 {
			fmt.Fprintf(out, "  Offer Rate: %.1f%%\n", percentage(stats.Offers, stats.Total))
		}

		fmt.Fprintf(out, "\n%s\n", labelStyle.Render("Status Breakdown"))
		for _, status := range models.Statuses {
			count := stats.Count(status)
			fmt.Fprintf(out, "  %s: %d (%.1f%%)\n", statusLabel(status), count, percentage(count, stats.Total))
		}

		if recent := recentActivity(records, time.Now()); len(recent) > 0 {
			fmt.Fprintf(out, "\n%s\n", labelStyle.Render("Recent Activity"))
			for _, a := range recent {
				fmt.Fprintf(out, "  %s: %s at %s (%s)\n",
					a.UpdatedAt.Local().Format("Jan 2"), a.Role, a.CompanyName, a.Status)
			}
		}
		return nil
	},
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// recentActivity returns applications touched within recentWindow, most recent first
func recentActivity(records []models.Application, now time.Time) []models.Application {
	var recent []models.Application
	for _, a := range records {
		if now.Sub(a.UpdatedAt) < recentWindow {
			recent = append(recent, a)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	return recent
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
