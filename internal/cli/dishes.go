package cli

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newDishesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dishes [query]",
		Short: "List the dishes the genie knows, or search them",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/knowledge"
			if query := strings.Join(args, " "); query != "" {
				path += "?q=" + url.QueryEscape(query)
			}

			var result Dishes
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <text>",
		Short: "Resolve free text to a known dish",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match
			if err := client.Post("/api/v1/knowledge/match", map[string]string{"text": strings.Join(args, " ")}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
