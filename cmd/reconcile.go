package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldlink/internal/engine"
	"github.com/sells-group/fieldlink/internal/report"
)

var (
	reconcileDealIDs []string
	reconcileFrom    string
	reconcileTo      string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Report deals whose CRM stage disagrees with the linked job's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.CRM == nil {
			return eris.New("reconcile requires a configured CRM; set crm.base_url and crm.token")
		}

		window, err := parseWindow(reconcileFrom, reconcileTo)
		if err != nil {
			return err
		}

		projects, deals, err := env.loadProjects(ctx, reconcileDealIDs)
		if err != nil {
			return err
		}

		result, err := env.Engine.Run(ctx, projects, window)
		if err != nil {
			if eris.Is(err, engine.ErrNotConfigured) {
				return eris.New("field-service integration is not configured; run 'fieldlink config init' and set fieldservice.base_url and fieldservice.api_key")
			}
			return err
		}

		mismatches := report.BuildReconcile(result.Links, deals)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(mismatches); err != nil {
			return eris.Wrap(err, "encode mismatches")
		}

		fmt.Fprintf(os.Stderr, "pass %s: %d deals checked, %d mismatches\n",
			result.PassID, len(deals), len(mismatches))
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringSliceVar(&reconcileDealIDs, "deal", nil, "deal id to check (repeatable)")
	reconcileCmd.Flags().StringVar(&reconcileFrom, "from", "", "window start (YYYY-MM-DD)")
	reconcileCmd.Flags().StringVar(&reconcileTo, "to", "", "window end (YYYY-MM-DD)")
	_ = reconcileCmd.MarkFlagRequired("deal")
	rootCmd.AddCommand(reconcileCmd)
}
