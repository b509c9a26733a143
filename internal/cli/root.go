// Package cli wires the board into a cobra command tree. With no
// subcommand it opens the interactive board; the subcommands apply single
// changes through the same session so every change is saved the same way.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/kanban/internal/tui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Dir     string
	Storage string
	NoMouse bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kanban CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "kanban",
		Short:         "A three-column task board for the terminal",
		Long:          "Track tasks across To Do, Doing and Done. Run without arguments to open the interactive board.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "data directory (default ./.kanban or $KANBAN_DIR)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "storage backend for this run (file|sqlite|memory)")
	cmd.PersistentFlags().BoolVar(&opts.NoMouse, "no-mouse", false, "disable mouse capture")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

func runBoard(opts *RootOptions) error {
	env, err := openEnvironment(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	app := tui.NewApp(env.session,
		tui.WithLogbook(env.log),
		tui.WithLogPanel(env.cfg.Project.UI.ShowLog),
		tui.WithColumnWidth(env.cfg.ColumnWidth()),
	)
	if err := tui.Run(app, env.cfg.MouseEnabled()); err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
