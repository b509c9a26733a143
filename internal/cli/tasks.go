package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/kingrea/kanban/internal/board"
	"github.com/kingrea/kanban/internal/persist"
	"github.com/kingrea/kanban/internal/render"
)

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to To Do",
		Long: `Add a task to the To Do column and print its id.

Blank text is ignored and prints nothing.

Example:
  kanban add "Buy milk"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			task, ok := env.session.Add(strings.Join(args, " "))
			if !ok {
				return nil
			}
			if err := savedOrError(env); err != nil {
				return err
			}
			payload, err := taskPayload(task)
			if err != nil {
				return err
			}
			return newFormatter(opts, cmd.OutOrStdout()).Success(task.ID, payload)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Print the board",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			data, err := persist.Encode(env.session.Tasks())
			if err != nil {
				return err
			}
			frame := render.NewFrame(env.cfg.ColumnWidth())
			text := ansi.Strip(frame.Columns(env.session.Board()))
			return newFormatter(opts, cmd.OutOrStdout()).Success(text, json.RawMessage(data))
		},
	}
}

// MoveOptions holds flags for the move command.
type MoveOptions struct {
	*RootOptions
	To    string
	Left  bool
	Right bool
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task to another column",
		Long: `Move a task one column left or right, or straight to a column.

Examples:
  kanban move 3f2a --right
  kanban move 3f2a --to done`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveTask(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "target column (todo|doing|done)")
	cmd.Flags().BoolVar(&opts.Left, "left", false, "move one column left")
	cmd.Flags().BoolVar(&opts.Right, "right", false, "move one column right")
	cmd.MarkFlagsMutuallyExclusive("to", "left", "right")
	cmd.MarkFlagsOneRequired("to", "left", "right")

	return cmd
}

func moveTask(opts *MoveOptions, id string, cmd *cobra.Command) error {
	var target board.Status
	if opts.To != "" {
		status, err := board.ParseStatus(opts.To)
		if err != nil {
			return err
		}
		target = status
	}

	env, err := openEnvironment(opts.RootOptions)
	if err != nil {
		return err
	}
	defer env.Close()

	var moved bool
	switch {
	case opts.Left:
		moved = env.session.MoveLeft(id)
	case opts.Right:
		moved = env.session.MoveRight(id)
	default:
		moved = env.session.SetStatus(id, target)
	}

	out := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	if !moved {
		return out.Unchanged()
	}
	if err := savedOrError(env); err != nil {
		return err
	}
	task, _ := env.session.Get(id)
	payload, err := taskPayload(task)
	if err != nil {
		return err
	}
	return out.Success(fmt.Sprintf("%s → %s", task.ID, task.Status.Title()), payload)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			out := newFormatter(opts, cmd.OutOrStdout())
			if !env.session.Delete(args[0]) {
				return out.Unchanged()
			}
			if err := savedOrError(env); err != nil {
				return err
			}
			return out.Success("deleted "+args[0], map[string]string{"id": args[0]})
		},
	}
}

// savedOrError fails the command when the change never reached storage. The
// process exits right after, so an in-memory change would be lost.
func savedOrError(env *environment) error {
	if err := env.session.LastSaveError(); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// taskPayload reuses the persisted record layout for one task.
func taskPayload(task board.Task) (json.RawMessage, error) {
	data, err := persist.Encode([]board.Task{task})
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode task payload: %w", err)
	}
	return records[0], nil
}
