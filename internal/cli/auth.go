package cli

import (
	"github.com/spf13/cobra"

	"github.com/mkrupp/disastermap/internal/svc/authsvc"
)

func (c *cli) newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Example: `  disasterctl login --email ada@example.org
  disasterctl login --email ada@example.org --password 'S3cret!pw'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ask(c.opts.Prompter.Input, "Email", &email); err != nil {
				return err
			}

			if err := ask(c.opts.Prompter.Password, "Password", &password); err != nil {
				return err
			}

			return c.finish(cmd, c.app.Auth.Login(cmd.Context(), email, password))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password; prompted when empty")

	return cmd
}

func (c *cli) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.finish(cmd, c.app.Auth.Logout(cmd.Context()))
		},
	}
}

func (c *cli) newRegisterCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. The server sends a verification email; follow it with
disasterctl verify-email CODE before logging in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ask(c.opts.Prompter.Input, "Name", &name); err != nil {
				return err
			}

			if err := ask(c.opts.Prompter.Input, "Email", &email); err != nil {
				return err
			}

			if err := ask(c.opts.Prompter.Password, "Password", &password); err != nil {
				return err
			}

			return c.finish(cmd, c.app.Auth.Register(cmd.Context(), name, email, password))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password; prompted when empty")

	return cmd
}

func (c *cli) newVerifyEmailCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email CODE",
		Short: "Verify an account with the code from the verification email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.finish(cmd, c.app.Auth.VerifyEmail(cmd.Context(), args[0]))
		},
	}
}

func (c *cli) newResetPasswordCommand() *cobra.Command {
	var email, code, password, confirm string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ask(c.opts.Prompter.Input, "Email", &email); err != nil {
				return err
			}

			if err := ask(c.opts.Prompter.Input, "Reset code", &code); err != nil {
				return err
			}

			if err := ask(c.opts.Prompter.Password, "New password", &password); err != nil {
				return err
			}

			if err := ask(c.opts.Prompter.Password, "Confirm new password", &confirm); err != nil {
				return err
			}

			return c.finish(cmd, c.app.Auth.ResetPassword(cmd.Context(), email, code, password, confirm))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&code, "code", "", "Reset code")
	cmd.Flags().StringVar(&password, "password", "", "New password; prompted when empty")
	cmd.Flags().StringVar(&confirm, "confirm", "", "New password again; prompted when empty")

	return cmd
}

func (c *cli) newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := authsvc.SessionView{
				Session:    c.app.Session.Snapshot(),
				IsAdmin:    c.app.Auth.IsAdmin(),
				IsReporter: c.app.Auth.IsReporter(),
			}

			return c.print(cmd, view, func() string { return sessionTable(view.Session) })
		},
	}
}

func (c *cli) newOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open PATH",
		Short: "Show where navigating to a page would land with the current session",
		Example: `  disasterctl open /dashboard
  disasterctl open /disasters/12/edit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := c.app.Navigator.Navigate(cmd.Context(), args[0])
			if err != nil {
				return err //nolint:wrapcheck
			}

			return c.print(cmd, loc, func() string { return locationTable(loc) })
		},
	}
}
