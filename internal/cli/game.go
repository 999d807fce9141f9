package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameActionCmd("start", "Start a new round", "/api/v1/game/start"))
	cmd.AddCommand(newGameAnswerCmd())
	cmd.AddCommand(newGameActionCmd("undo", "Take back the last answer", "/api/v1/game/undo"))
	cmd.AddCommand(newGameVerifyCmd())
	cmd.AddCommand(newGameRevealCmd())
	cmd.AddCommand(newGameActionCmd("restart", "Abandon the round and return to the start screen", "/api/v1/game/restart"))

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Get the current round",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureClient(); err != nil {
				return err
			}

			var result Game
			if err := client.Get("/api/v1/game", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// newGameActionCmd builds a command for an action that takes no input
func newGameActionCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureClient(); err != nil {
				return err
			}
			return postGame(path, nil)
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	var free bool

	cmd := &cobra.Command{
		Use:   "answer <text>",
		Short: "Answer the genie's question",
		Long: `Answer with one of the offered options, or pass --free to type your own
answer instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"answer": strings.Join(args, " "),
				"free":   free,
			}
			return postGame("/api/v1/game/answer", req)
		},
	}

	cmd.Flags().BoolVar(&free, "free", false, "Send a free-text answer")

	return cmd
}

func newGameVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "verify <yes|no>",
		Short:     "Tell the genie whether its guess was right",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"yes", "no"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var correct bool
			switch strings.ToLower(args[0]) {
			case "yes", "y":
				correct = true
			case "no", "n":
				correct = false
			default:
				return fmt.Errorf("answer must be yes or no")
			}
			return postGame("/api/v1/game/verify", map[string]bool{"correct": correct})
		},
	}
}

func newGameRevealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <dish>",
		Short: "Reveal the dish you were thinking of",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postGame("/api/v1/game/reveal", map[string]string{"answer": strings.Join(args, " ")})
		},
	}
}

func postGame(path string, req any) error {
	var result Game
	if err := client.Post(path, req, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}
