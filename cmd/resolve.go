package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldlink/internal/engine"
	"github.com/sells-group/fieldlink/internal/fieldservice"
	"github.com/sells-group/fieldlink/internal/report"
)

var (
	resolveDealIDs []string
	resolveFrom    string
	resolveTo      string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run one resolution pass and print the link lookup table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		window, err := parseWindow(resolveFrom, resolveTo)
		if err != nil {
			return err
		}

		projects, deals, err := env.loadProjects(ctx, resolveDealIDs)
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

		rows := report.BuildLookup(result.Links, deals)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "encode lookup rows")
		}

		fmt.Fprintf(os.Stderr, "pass %s: %d jobs, %d candidates, %d/%d projects linked\n",
			result.PassID, result.Jobs, result.Candidates, len(result.Links), len(projects))
		return nil
	},
}

// parseWindow parses --from/--to into a fetch window. Both or neither.
func parseWindow(from, to string) (*fieldservice.DateWindow, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, eris.New("--from and --to must be given together")
	}
	fromT, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, eris.Wrap(err, "parse --from")
	}
	toT, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, eris.Wrap(err, "parse --to")
	}
	return &fieldservice.DateWindow{From: fromT, To: toT}, nil
}

func init() {
	resolveCmd.Flags().StringSliceVar(&resolveDealIDs, "deal", nil, "deal id to resolve (repeatable)")
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "window start (YYYY-MM-DD)")
	resolveCmd.Flags().StringVar(&resolveTo, "to", "", "window end (YYYY-MM-DD)")
	_ = resolveCmd.MarkFlagRequired("deal")
	rootCmd.AddCommand(resolveCmd)
}
