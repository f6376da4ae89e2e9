package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/internal/view"
	"github.com/khrees2412/jobtracker/pkg/models"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long:  "Browse, filter and update your applications interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, session, err := requireSession(cmd)
		if err != nil {
			return err
		}
		if err := a.RequireDurableStore(); err != nil {
			return err
		}

		c := a.NewCache(session)
		dashboard := view.NewDashboard(view.Filter{Status: view.StatusAll})
		detach := dashboard.Attach(c)
		defer detach()

		if err := c.Load(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errorStyle.Render("Error:"), err)
		}

		t := &browser{
			ctx:       cmd.Context(),
			out:       cmd.OutOrStdout(),
			reader:    bufio.NewReader(cmd.InOrStdin()),
			session:   session,
			cache:     c,
			dashboard: dashboard,
		}
		return t.run()
	},
}

// browser is the line-oriented application browser behind the tui command
type browser struct {
	ctx       context.Context
	out       io.Writer
	reader    *bufio.Reader
	session   *auth.Session
	cache     *cache.Cache
	dashboard *view.Dashboard
}

func (b *browser) run() error {
	for {
		snap := b.dashboard.Snapshot()
		b.render(snap)

		input, err := b.readLine("\n> ")
		if err != nil {
			return nil
		}

		switch {
		case input == "q" || input == "Q":
			return nil
		case input == "":
			continue
		case input == "r":
			if err := b.cache.Load(b.ctx); err != nil {
				b.fail(err)
			}
		case input == "a":
			b.add()
		case strings.HasPrefix(input, "/"):
			b.dashboard.SetQuery(strings.TrimSpace(strings.TrimPrefix(input, "/")))
		case input == "f" || strings.HasPrefix(input, "f "):
			b.dashboard.SetStatusFilter(b.nextFilter(snap.Filter.Status, strings.TrimSpace(strings.TrimPrefix(input, "f"))))
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(snap.Visible) {
				fmt.Fprintln(b.out, "Invalid selection")
				continue
			}
			b.details(snap.Visible[n-1].ID)
		}
	}
}

func (b *browser) render(snap view.Snapshot) {
	user := b.session.CurrentUser()
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}

	fmt.Fprintln(b.out, titleStyle.Render("Job Applications · "+name))
	fmt.Fprintf(b.out, "%s %d  %s %d  %s %d  %s %d  %s %d\n",
		labelStyle.Render("Total"), snap.Stats.Total,
		labelStyle.Render("Applied"), snap.Stats.Applied,
		labelStyle.Render("Interviews"), snap.Stats.Interviews,
		labelStyle.Render("Offers"), snap.Stats.Offers,
		labelStyle.Render("Rejected"), snap.Stats.Rejected)

	filter := snap.Filter.Status
	if filter == "" {
		filter = view.StatusAll
	}
	fmt.Fprintf(b.out, "%s %s  %s %q\n", labelStyle.Render("Filter:"), filter, labelStyle.Render("Search:"), snap.Filter.Query)

	switch snap.Status {
	case cache.StatusLoading:
		fmt.Fprintln(b.out, mutedStyle.Render("Loading..."))
	case cache.StatusError:
		fmt.Fprintf(b.out, "%s %v\n", errorStyle.Render("Could not load applications:"), snap.Err)
	}

	if len(snap.Visible) == 0 {
		if snap.Stats.Total == 0 {
			fmt.Fprintln(b.out, "\nNo applications yet. Press 'a' to add one.")
		} else {
			fmt.Fprintln(b.out, "\nNo applications match your filters.")
		}
	}
	for i, a := range snap.Visible {
		printApplicationLine(b.out, i, a)
	}

	fmt.Fprintln(b.out, mutedStyle.Render("\n[number] details  [a] add  [/text] search  [f status] filter  [r] refresh  [q] quit"))
}

// nextFilter returns the requested status, or cycles all → applied → ... → all
func (b *browser) nextFilter(current, requested string) string {
	if requested != "" {
		return strings.ToLower(requested)
	}
	order := append([]string{view.StatusAll}, statusNames()...)
	for i, s := range order {
		if strings.EqualFold(s, current) {
			return order[(i+1)%len(order)]
		}
	}
	return view.StatusAll
}

func (b *browser) add() {
	input := models.NewApplicationInput(time.Now())
	input.CompanyName = b.ask("Company: ")
	input.Role = b.ask("Role: ")
	if v := b.ask(fmt.Sprintf("Location [%s]: ", input.LocationType)); v != "" {
		input.LocationType = models.LocationType(v)
	}
	input.ApplicationLink = b.ask("Link (optional): ")
	if v := b.ask(fmt.Sprintf("Date applied [%s]: ", input.DateApplied)); v != "" {
		input.DateApplied = v
	}
	if v := b.ask(fmt.Sprintf("Status [%s]: ", input.Status)); v != "" {
		input.Status = models.Status(v)
	}
	input.Notes = b.ask("Notes (optional): ")

	created, err := b.cache.Add(b.ctx, input)
	if err != nil {
		b.fail(err)
		return
	}
	fmt.Fprintf(b.out, "✓ Tracking %s at %s\n", created.Role, created.CompanyName)
}

func (b *browser) details(id string) {
	for {
		a, err := b.cache.Resolve(id)
		if err != nil {
			b.fail(err)
			return
		}

		fmt.Fprintln(b.out, "\n"+strings.Repeat("=", 60))
		printApplication(b.out, a)

		fmt.Fprintln(b.out, "\nOptions:")
		fmt.Fprintln(b.out, "  [s] Change status")
		fmt.Fprintln(b.out, "  [n] Edit notes")
		fmt.Fprintln(b.out, "  [d] Delete")
		fmt.Fprintln(b.out, "  [b] Back to list")

		choice, err := b.readLine("\n> ")
		if err != nil {
			return
		}

		switch strings.ToLower(choice) {
		case "s":
			raw := models.Status(b.ask(fmt.Sprintf("Status (%s): ", strings.Join(statusNames(), ", "))))
			if _, err := b.cache.Change(b.ctx, a.ID, models.ApplicationPatch{Status: &raw}); err != nil {
				b.fail(err)
				continue
			}
			fmt.Fprintln(b.out, "✓ Status updated")
		case "n":
			notes := b.ask("Notes: ")
			if _, err := b.cache.Change(b.ctx, a.ID, models.ApplicationPatch{Notes: &notes}); err != nil {
				b.fail(err)
				continue
			}
			fmt.Fprintln(b.out, "✓ Notes updated")
		case "d":
			if !strings.EqualFold(b.ask("Delete this application? [y/N]: "), "y") {
				continue
			}
			if err := b.cache.Remove(b.ctx, a.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
				b.fail(err)
				continue
			}
			fmt.Fprintln(b.out, "✓ Application deleted")
			return
		case "b":
			return
		default:
			fmt.Fprintln(b.out, "Invalid choice")
		}
	}
}

func (b *browser) readLine(label string) (string, error) {
	fmt.Fprint(b.out, label)
	line, err := b.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (b *browser) ask(label string) string {
	return prompt(b.reader, b.out, label)
}

func (b *browser) fail(err error) {
	fmt.Fprintf(b.out, "%s %v\n", errorStyle.Render("Error:"), err)
}

func statusNames() []string {
	names := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		names[i] = string(s)
	}
	return names
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
