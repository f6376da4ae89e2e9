package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
	Long:  "View your account and update the display name shown in the header",
}

var showProfileCmd = &cobra.Command{
	Use:   "show",
	Short: "Display your profile information",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, session, err := requireSession(cmd)
		if err != nil {
			return err
		}

		user, err := a.Auth.Profile(cmd.Context(), session)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render("Your Profile"))
		name := user.DisplayName
		if name == "" {
			name = mutedStyle.Render("(not set)")
		}
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Name:"), valueStyle.Render(name))
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Email:"), valueStyle.Render(user.Email))
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Member since:"), valueStyle.Render(user.CreatedAt.Local().Format("Jan 2, 2006")))
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Session expires:"), valueStyle.Render(session.ExpiresAt().Local().Format("Jan 2, 2006 15:04")))
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:     "set",
	Short:   "Update your display name",
	Example: `  jobtracker profile set --name "Ada Lovelace"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") {
			fmt.Fprintln(cmd.OutOrStdout(), "No fields to update. Use --name.")
			return nil
		}
		name, _ := cmd.Flags().GetString("name")

		a, session, err := requireSession(cmd)
		if err != nil {
			return err
		}

		user, err := a.Auth.UpdateDisplayName(cmd.Context(), session, name)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Display name set to %s\n", user.DisplayName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(setProfileCmd)

	setProfileCmd.Flags().String("name", "", "Display name")
}
