package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fieldlink/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fieldlink",
	Short: "Link field-service jobs to CRM deals",
	Long:  "Resolves which field-service job belongs to which CRM deal without a shared key, using a ranked set of weak-identity signals, and projects the links into lookup, reconciliation, and revenue reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
