// Package cli implements the disasterctl commands. Every command restores
// the session before it runs, so it sees the same state a page would.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkrupp/disastermap/internal/app"
	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/config"
	context_ "github.com/mkrupp/disastermap/internal/infra/context"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
)

// Options configures the root command.
type Options struct {
	// NewApp builds the client core. It runs after the env file is loaded.
	NewApp func(ctx context.Context) (*app.App, error)
	// Prompter asks for missing input; nil uses interactive terminal forms.
	Prompter Prompter
	Out      io.Writer
	Err      io.Writer
}

// ResultError reports a failed operation with its user facing message.
type ResultError struct {
	domain.Result
}

func (e *ResultError) Error() string { return e.Message }

func (e *ResultError) Unwrap() error { return e.Err }

type cli struct {
	opts    Options
	format  string
	envFile string
	app     *app.App
	log     logging.Logger
}

// NewRootCommand creates the disasterctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRoot(opts)

	return root
}

func newRoot(opts Options) (*cobra.Command, *cli) {
	if opts.Prompter == nil {
		opts.Prompter = HuhPrompter{}
	}

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	c := &cli{opts: opts, log: logging.GetLogger("cli")} //nolint:exhaustruct

	root := &cobra.Command{
		Use:   "disasterctl",
		Short: "Browse and report disasters from the terminal",
		Long: `disasterctl talks to the disaster map API with the session stored on
this machine. Log in once; later commands reuse the stored token until the
server rejects it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.teardown()
		},
	}

	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVarP(&c.format, "output", "o", FormatTable, "Output format: table, json or yaml")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Optional file of environment variables")

	root.AddCommand(
		c.newLoginCommand(),
		c.newLogoutCommand(),
		c.newRegisterCommand(),
		c.newVerifyEmailCommand(),
		c.newResetPasswordCommand(),
		c.newWhoamiCommand(),
		c.newOpenCommand(),
		c.newDisastersCommand(),
	)

	return root, c
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(c.format); err != nil {
		return err
	}

	if err := config.LoadDotEnv(c.envFile); err != nil {
		return fmt.Errorf("env file: %w", err)
	}

	ctx, _ := context_.EnsureTraceID(cmd.Context(), http_.NewTraceID)
	cmd.SetContext(ctx)

	a, err := c.opts.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	c.app = a
	c.app.Session.Restore(ctx)

	c.log.DebugContext(ctx, "session restored", "authenticated", c.app.Session.Snapshot().IsAuthenticated)

	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}

	err := c.app.Close()
	c.app = nil

	return err
}

// finish prints a successful result or turns a failed one into an error.
func (c *cli) finish(cmd *cobra.Command, res domain.Result) error {
	if !res.Success {
		return &ResultError{Result: res}
	}

	return c.print(cmd, res, func() string { return successStyle.Render("✓ " + res.Message) })
}

func (c *cli) print(cmd *cobra.Command, v any, table func() string) error {
	return render(cmd.OutOrStdout(), c.format, v, table)
}

// Execute runs the command tree with args, or the process arguments when
// none are given, and reports failures on stderr. It returns the exit code:
// 1 for failed operations, 2 for usage and setup errors.
func Execute(ctx context.Context, opts Options, args ...string) int {
	root, c := newRoot(opts)
	if len(args) > 0 {
		root.SetArgs(args)
	}

	// Post-run hooks are skipped when a command fails.
	err := errors.Join(root.ExecuteContext(ctx), c.teardown())
	if err == nil {
		return 0
	}

	var resErr *ResultError
	if errors.As(err, &resErr) {
		fmt.Fprintln(root.ErrOrStderr(), errorStyle.Render("✗ "+resErr.Message))

		return 1
	}

	fmt.Fprintln(root.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))

	return 2 //nolint:mnd
}
