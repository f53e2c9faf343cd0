package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"venture-match/internal/matching/service"
	"venture-match/internal/models"
)

func (c *cli) computeCmd() *cobra.Command {
	var (
		matchType string
		force     bool
		readOnly  bool
	)
	cmd := &cobra.Command{
		Use:   "compute <startup-id> <investor-id>",
		Short: "Compute or fetch the match record for a pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if force && readOnly {
				return fmt.Errorf("--force and --read-only are mutually exclusive")
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
			lookup, err := svc.GetOrCompute(cmd.Context(), args[0], args[1], matchType, service.Options{
				ForceRecalculate: force,
				ReadOnly:         readOnly,
			})
			if err != nil {
				return err
			}
			return c.printJSON(map[string]interface{}{
				"source":   lookup.Source,
				"archived": lookup.Archived,
				"record":   lookup.Record,
			})
		},
	}
	cmd.Flags().StringVar(&matchType, "type", models.DefaultMatchType, "match type")
	cmd.Flags().BoolVar(&force, "force", false, "recompute even when a fresh record exists")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "never compute; fail when no live record exists")
	return cmd
}

func (c *cli) feedbackCmd() *cobra.Command {
	var (
		side    string
		rating  int
		notes   string
		outcome string
	)
	cmd := &cobra.Command{
		Use:   "feedback <match-id>",
		Short: "Record one side's feedback on a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fbSide := models.FeedbackSide(side)
			if !fbSide.Valid() {
				return fmt.Errorf("--side must be startup or investor")
			}
			if rating < 0 || rating > 5 {
				return fmt.Errorf("--rating must be between 1 and 5")
			}
			if rating == 0 && strings.TrimSpace(notes) == "" {
				return fmt.Errorf("give --rating, --notes or both")
			}
			var actual *models.ActualOutcome
			if outcome != "" {
				o := models.ActualOutcome(outcome)
				if _, ok := o.SuccessValue(); !ok {
					return fmt.Errorf("unknown --outcome %q", outcome)
				}
				actual = &o
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
			rec, err := svc.SubmitFeedback(cmd.Context(), args[0], fbSide, models.Feedback{Rating: rating, Notes: notes}, actual)
			if err != nil {
				return err
			}
			return c.printJSON(rec)
		},
	}
	cmd.Flags().StringVar(&side, "side", "", "startup or investor")
	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5; may be omitted when --notes is given")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&outcome, "outcome", "", "actual outcome (investment, partnership, advisory, introduction, no-outcome)")
	_ = cmd.MarkFlagRequired("side")
	return cmd
}
