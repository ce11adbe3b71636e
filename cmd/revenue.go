package main

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/fieldlink/internal/engine"
	"github.com/sells-group/fieldlink/internal/fieldservice"
	"github.com/sells-group/fieldlink/internal/report"
)

var (
	revenueDealIDs []string
	revenueMonth   string
	revenueJSON    bool
)

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Print the per-day revenue calendar for a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, to, err := parseMonth(revenueMonth)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.CRM == nil {
			return eris.New("revenue requires a configured CRM; set crm.base_url and crm.token")
		}

		projects, deals, err := env.loadProjects(ctx, revenueDealIDs)
		if err != nil {
			return err
		}

		result, err := env.Engine.Run(ctx, projects, &fieldservice.DateWindow{From: from, To: to})
		if err != nil {
			if eris.Is(err, engine.ErrNotConfigured) {
				return eris.New("field-service integration is not configured; run 'fieldlink config init' and set fieldservice.base_url and fieldservice.api_key")
			}
			return err
		}

		cal := report.BuildRevenue(result.Links, deals, from, to)

		if revenueJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cal)
		}

		p := message.NewPrinter(language.English)
		days := make([]string, 0, len(cal.Days))
		for day := range cal.Days {
			days = append(days, day)
		}
		sort.Strings(days)

		var total float64
		for _, day := range days {
			p.Printf("%s  $%.2f\n", day, cal.Days[day])
			total += cal.Days[day]
		}
		p.Printf("total %s..%s  $%.2f across %d projects\n", cal.From, cal.To, total, len(cal.Projects))
		return nil
	},
}

// parseMonth expands "2026-02" into the month's first and last day.
func parseMonth(month string) (time.Time, time.Time, error) {
	if month == "" {
		now := time.Now().UTC()
		month = now.Format("2006-01")
	}
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Wrap(err, "parse --month")
	}
	to := from.AddDate(0, 1, -1)
	return from, to, nil
}

func init() {
	revenueCmd.Flags().StringSliceVar(&revenueDealIDs, "deal", nil, "deal id to include (repeatable)")
	revenueCmd.Flags().StringVar(&revenueMonth, "month", "", "calendar month (YYYY-MM, default current)")
	revenueCmd.Flags().BoolVar(&revenueJSON, "json", false, "emit the full calendar as JSON")
	_ = revenueCmd.MarkFlagRequired("deal")
	rootCmd.AddCommand(revenueCmd)
}
