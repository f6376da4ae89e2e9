package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/khrees2412/jobtracker/internal/app"
	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/pkg/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func getApp(cmd *cobra.Command) (*app.App, error) {
	a := app.GetAppFromContext(cmd.Context())
	if a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a, nil
}

func requireSession(cmd *cobra.Command) (*app.App, *auth.Session, error) {
	a, err := getApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	session, err := a.CurrentSession(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return a, session, nil
}

// loadCache resumes the saved session and loads its applications
func loadCache(cmd *cobra.Command) (*app.App, *cache.Cache, error) {
	a, session, err := requireSession(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := a.RequireDurableStore(); err != nil {
		return nil, nil, err
	}
	c := a.NewCache(session)
	if err := c.Load(cmd.Context()); err != nil {
		return nil, nil, fmt.Errorf("fetch applications: %w", err)
	}
	return a, c, nil
}

func statusLabel(status models.Status) string {
	labels := map[models.Status]string{
		models.StatusApplied:   "✅ Applied",
		models.StatusInterview: "💼 Interview",
		models.StatusOffer:     "🎉 Offer",
		models.StatusRejected:  "❌ Rejected",
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return string(status)
}

func locationLabel(location models.LocationType) string {
	return cases.Title(language.English).String(string(location))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printApplicationLine(w io.Writer, i int, a models.Application) {
	fmt.Fprintf(w, "\n%s. %s at %s\n", labelStyle.Render(fmt.Sprintf("%d", i+1)), a.Role, a.CompanyName)
	fmt.Fprintf(w, "   %s %s | %s %s | %s %s\n",
		labelStyle.Render("ID:"), shortID(a.ID),
		labelStyle.Render("Status:"), statusLabel(a.Status),
		labelStyle.Render("Applied:"), a.DateApplied)
}

func printApplication(w io.Writer, a models.Application) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s at %s", a.Role, a.CompanyName)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("ID:"), a.ID)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Status:"), statusLabel(a.Status))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Location:"), locationLabel(a.LocationType))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Applied:"), a.DateApplied)
	if a.ApplicationLink != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Link:"), a.ApplicationLink)
	}
	if a.Notes != "" {
		fmt.Fprintf(w, "%s\n%s\n", labelStyle.Render("Notes:"), valueStyle.Render(a.Notes))
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Last updated:"), a.UpdatedAt.Local().Format("Jan 2, 2006 15:04"))
}

// readPassword prompts without echo on a terminal, otherwise reads one line from reader
func readPassword(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), labelStyle.Render(label))

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func prompt(reader *bufio.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, labelStyle.Render(label))
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
