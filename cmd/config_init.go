package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fieldlink/internal/config"
	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/fieldservice"
	"github.com/sells-group/fieldlink/internal/store"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return eris.Errorf("%s already exists (use --force to overwrite)", path)
		}

		starter := config.Config{
			FieldService: config.FieldServiceConfig{
				ClientConfig: fieldservice.ClientConfig{
					BaseURL: "https://api.example-fsm.com",
					APIKey:  "",
					RPS:     5,
				},
				FetcherConfig: fieldservice.FetcherConfig{
					PageSize:           100,
					MaxPages:           25,
					IncludeUnscheduled: true,
				},
			},
			CRM: crm.ClientConfig{
				BaseURL: "https://api.hubapi.com",
				Token:   "",
				RPS:     8,
			},
			Cache: store.Config{
				Driver: "sqlite",
				Path:   "fieldlink.db",
			},
			Linkage: config.LinkageConfig{
				TagPrefix:  "deal",
				CategoryID: "",
			},
			Server: config.ServerConfig{Port: 8080},
			Log:    config.LogConfig{Level: "info", Format: "json"},
		}

		data, err := yaml.Marshal(starter)
		if err != nil {
			return eris.Wrap(err, "marshal starter config")
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return eris.Wrap(err, "write config.yaml")
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
