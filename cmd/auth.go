package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Example: `  jobtracker signup --email you@example.com --name "Ada"
  echo "$PASSWORD" | jobtracker signup --email you@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		reader := bufio.NewReader(cmd.InOrStdin())
		if email == "" {
			email = prompt(reader, cmd.OutOrStdout(), "Email: ")
		}
		password, err := readPassword(cmd, reader, "Password: ")
		if err != nil {
			return err
		}

		session, err := a.Auth.SignUp(cmd.Context(), email, password, name)
		if err != nil {
			return err
		}
		if err := a.SaveSession(session); err != nil {
			return err
		}
		a.Logger.Info("signed up", "user_id", session.CurrentUser().ID)

		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("✓ Account created"))
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", session.CurrentUser().Email)
		fmt.Fprintln(cmd.OutOrStdout(), "Next: jobtracker app add --company ACME --role \"Backend Engineer\"")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		reader := bufio.NewReader(cmd.InOrStdin())
		if email == "" {
			email = prompt(reader, cmd.OutOrStdout(), "Email: ")
		}
		password, err := readPassword(cmd, reader, "Password: ")
		if err != nil {
			return err
		}

		session, err := a.Auth.SignIn(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := a.SaveSession(session); err != nil {
			return err
		}
		a.Logger.Info("signed in", "user_id", session.CurrentUser().ID)

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s\n", session.CurrentUser().Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd)
		if err != nil {
			return err
		}

		session, err := a.CurrentSession(cmd.Context())
		if err == nil {
			if err := a.Auth.SignOut(cmd.Context(), session); err != nil {
				return err
			}
		}
		if err := a.ForgetSession(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, session, err := requireSession(cmd)
		if err != nil {
			return err
		}
		user := session.CurrentUser()
		if user.DisplayName != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.DisplayName, user.Email)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	signupCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("name", "", "Display name")
	loginCmd.Flags().String("email", "", "Account email")
}
