package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newOwnerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Owner administration (owner login required)",
	}

	cmd.AddCommand(newOwnerUsersCmd())
	cmd.AddCommand(newOwnerBanCmd())
	cmd.AddCommand(newOwnerReportCmd())

	return cmd
}

func newOwnerUsersCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List or search users",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/owner/users"
			if query != "" {
				path += "?q=" + url.QueryEscape(query)
			}

			var result Leaderboard
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Username substring")

	return cmd
}

func newOwnerBanCmd() *cobra.Command {
	var unban bool

	cmd := &cobra.Command{
		Use:   "ban <username>",
		Short: "Ban or unban a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			path := fmt.Sprintf("/api/v1/owner/users/%s/ban", url.PathEscape(username))

			if err := client.Post(path, map[string]bool{"banned": !unban}, nil); err != nil {
				return err
			}

			verb := "banned"
			if unban {
				verb = "unbanned"
			}
			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("%s %s", username, verb))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unban, "unban", false, "Lift the ban instead")

	return cmd
}

func newOwnerReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the system report",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Report
			if err := client.Get("/api/v1/owner/report", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
