package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"venture-match/internal/models"
)

func (c *cli) expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Expire live records past their expiry horizon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, cfg, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			svc, err := deps.BuildService(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			n, err := svc.ExpireStale(cmd.Context())
			if err != nil {
				return err
			}
			return c.printJSON(map[string]int{"expired": n})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <match-id> <status>",
		Short: "Move a match record along its lifecycle",
		Long: `Move a match record to presented, acted-upon, completed, expired or archived.
Only forward transitions are accepted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next := models.MatchStatus(args[1])
			if !next.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}

			deps, cfg, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			svc, err := deps.BuildService(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			rec, err := svc.UpdateStatus(cmd.Context(), args[0], next)
			if err != nil {
				return err
			}
			return c.printJSON(rec)
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Show a match record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, _, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			rec, err := deps.Repo.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(rec)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list <startup-id>",
		Short: "List a startup's live matches, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, cfg, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			svc, err := deps.BuildService(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			recs, err := svc.ListForStartup(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return c.printJSON(recs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum records to return (at most 100)")
	return cmd
}
